package registry

import (
	p "github.com/soniccontrol/sonicctl/protocol"
)

// v3 moves worker frequency fields from Hz to hHz to fit 16-bit firmware
// registers, and drops the pico clock readout.
var layerV3 = layer{
	version: p.V(3, 0, 0),
	devices: []p.DeviceType{p.DeviceMvpWorker, p.DeviceDescale},
	consts: func(dt p.DeviceType) p.Constants {
		if dt != p.DeviceMvpWorker {
			return nil
		}
		// Limits are in the referencing field's prefix, so hHz here.
		return p.Constants{
			p.ConstMaxFrequency:     100_000,
			p.ConstMinFrequency:     1_000,
			p.ConstMaxFrequencyStep: 50_000,
			p.ConstMinFrequencyStep: 1,
		}
	},
	contracts: contractsV3,
}

func hectoFreqType() p.FieldType {
	return p.FieldType{
		Kind:   p.KindUint16,
		Unit:   p.UnitHertz,
		Prefix: p.PrefixHecto,
		Min:    p.Ref(p.ConstMinFrequency),
		Max:    p.Ref(p.ConstMaxFrequency),
	}
}

func hectoFreqStepType() p.FieldType {
	return p.FieldType{
		Kind:   p.KindUint16,
		Unit:   p.UnitHertz,
		Prefix: p.PrefixHecto,
		Min:    p.Ref(p.ConstMinFrequencyStep),
		Max:    p.Ref(p.ConstMaxFrequencyStep),
	}
}

func contractsV3(dt p.DeviceType) contractSet {
	cs := contractSet{}
	cs.remove(p.CodeGetDatetimePico)
	if dt != p.DeviceMvpWorker {
		return cs
	}
	cs.add([]*p.CommandContract{
		contract(p.CodeGetFreq, command("?f", "?freq", "?frequency", "get_frequency"), answer(afield(p.FieldFrequency, hectoFreqType())), p.TagStatus),
		contract(p.CodeSetFreq,
			setterCmd(param(p.FieldFrequency, hectoFreqType()), "!f", "!freq", "!frequency", "set_frequency"),
			answer(afield(p.FieldFrequency, hectoFreqType())), p.TagControl),
		contract(p.CodeGetUpdate, command("-", "get_update"), answer(
			afield(p.FieldErrorCode, errorCodeType()),
			afield(p.FieldFrequency, hectoFreqType()),
			afield(p.FieldGain, gainType()),
			afield(p.FieldProcedure, p.EnumField(p.EnumProcedure)),
			afield(p.FieldTemperature, tempType()),
			afield(p.FieldURMS, microVoltType()),
			afield(p.FieldIRMS, microAmpereType()),
			afield(p.FieldPhase, microDegreeType()),
			afield(p.FieldSignal, p.SignalField()),
			afield(p.FieldTsFlag, flagType()),
		), p.TagStatus),
		contract(p.CodeSetRampFStart, setterCmd(param(p.FieldRampFStart, hectoFreqType()), "!ramp_f_start"), answer(afield(p.FieldRampFStart, hectoFreqType())), p.TagProcedure),
		contract(p.CodeSetRampFStop, setterCmd(param(p.FieldRampFStop, hectoFreqType()), "!ramp_f_stop"), answer(afield(p.FieldRampFStop, hectoFreqType())), p.TagProcedure),
		contract(p.CodeSetRampFStep, setterCmd(param(p.FieldRampFStep, hectoFreqStepType()), "!ramp_f_step"), answer(afield(p.FieldRampFStep, hectoFreqStepType())), p.TagProcedure),
	})
	return cs
}
