package registry

import (
	p "github.com/soniccontrol/sonicctl/protocol"
)

// Base protocol layer. Everything later versions build on is declared here.
var layerV1 = layer{
	version: p.V(1, 0, 0),
	devices: []p.DeviceType{p.DeviceUnknown, p.DeviceMvpWorker, p.DeviceDescale, p.DeviceCrystal},
	consts: func(dt p.DeviceType) p.Constants {
		switch dt {
		case p.DeviceDescale:
			return p.Constants{p.ConstMaxGain: 101}
		case p.DeviceCrystal:
			return p.Constants{p.ConstMaxFrequency: 2_000_000, p.ConstMinFrequency: 50_000}
		}
		return nil
	},
	contracts: contractsV1,
}

func contractsV1(dt p.DeviceType) contractSet {
	switch dt {
	case p.DeviceUnknown:
		return probeContracts()
	case p.DeviceMvpWorker:
		cs := contractSet{}
		cs.add(genericContracts())
		cs.add(transducerContracts())
		cs.add(atContracts())
		cs.add(procedureContracts())
		cs.add(communicationContracts())
		cs.add(flashContracts())
		cs.add(notifyContracts())
		return cs
	case p.DeviceDescale:
		cs := contractSet{}
		cs.add(genericContracts())
		cs.add(transducerContracts())
		cs.add(dutyCycleContracts())
		cs.add(communicationContracts())
		cs.add(flashContracts())
		cs.add(notifyContracts())
		return cs
	case p.DeviceCrystal:
		return crystalContracts()
	}
	return nil
}

func protocolAnswer() *p.AnswerDef {
	return answer(
		afield(p.FieldDeviceType, p.EnumField(p.EnumDeviceType)),
		afield(p.FieldProtocolVersion, p.VersionField()),
		afield(p.FieldIsRelease, p.BuildTypeField()),
	)
}

func infoAnswer() *p.AnswerDef {
	return answer(
		afield(p.FieldDeviceType, p.EnumField(p.EnumDeviceType)),
		afield(p.FieldHardwareVersion, p.VersionField()),
		afield(p.FieldFirmwareVersion, p.VersionField()),
		afield(p.FieldBuildHash, p.StringField()),
		afield(p.FieldBuildDate, p.StringField()),
	)
}

func updateAnswer() *p.AnswerDef {
	return answer(
		afield(p.FieldErrorCode, errorCodeType()),
		afield(p.FieldFrequency, freqType()),
		afield(p.FieldGain, gainType()),
		afield(p.FieldProcedure, p.EnumField(p.EnumProcedure)),
		afield(p.FieldTemperature, tempType()),
		afield(p.FieldURMS, microVoltType()),
		afield(p.FieldIRMS, microAmpereType()),
		afield(p.FieldPhase, microDegreeType()),
		afield(p.FieldSignal, p.SignalField()),
		afield(p.FieldTsFlag, flagType()),
	)
}

func genericContracts() []*p.CommandContract {
	return []*p.CommandContract{
		contract(p.CodeGetProtocol, command("?protocol"), protocolAnswer(), p.TagStatus),
		contract(p.CodeGetInfo, command("?info"), infoAnswer(), p.TagStatus),
		contract(p.CodeGetHelp, command("?help"), answer(afield(p.FieldMessage, p.StringField())), p.TagStatus),
		contract(p.CodeGetUpdate, command("-", "get_update"), updateAnswer(), p.TagStatus),
		contract(p.CodeGetDatetime, command("?datetime"), answer(afield(p.FieldTimestamp, p.TimestampField())), p.TagConfig),
		contract(p.CodeSetDatetime,
			setterCmd(param(p.FieldTimestamp, p.TimestampField()), "!datetime"),
			answer(afield(p.FieldTimestamp, p.TimestampField())), p.TagConfig),
		contract(p.CodeGetDatetimePico, command("?datetime_pico"), answer(afield(p.FieldTimestamp, p.TimestampField())), p.TagDebug),
		debugContract(p.CodeSonicForce, command("!force"), successAnswer(), p.TagDebug),
	}
}

func transducerContracts() []*p.CommandContract {
	return []*p.CommandContract{
		contract(p.CodeGetFreq, command("?f", "?freq", "?frequency", "get_frequency"), answer(afield(p.FieldFrequency, freqType())), p.TagStatus),
		contract(p.CodeSetFreq,
			setterCmd(param(p.FieldFrequency, freqType()), "!f", "!freq", "!frequency", "set_frequency"),
			answer(afield(p.FieldFrequency, freqType())), p.TagControl),
		contract(p.CodeGetGain, command("?g", "?gain", "get_gain"), answer(afield(p.FieldGain, gainType())), p.TagStatus),
		contract(p.CodeSetGain,
			setterCmd(param(p.FieldGain, gainType()), "!g", "!gain", "set_gain"),
			answer(afield(p.FieldGain, gainType())), p.TagControl),
		contract(p.CodeSetOn, command("!ON", "set_on"), answer(afield(p.FieldSignal, p.SignalField())), p.TagControl),
		contract(p.CodeSetOff, command("!OFF", "set_off"), answer(afield(p.FieldSignal, p.SignalField())), p.TagControl),
		contract(p.CodeGetTemp, command("?temp", "?temperature", "get_temperature"), answer(afield(p.FieldTemperature, tempType())), p.TagStatus),
		contract(p.CodeGetTmcu, command("?tmcu"), answer(afield(p.FieldTemperatureMCU, tempType())), p.TagStatus),
		contract(p.CodeGetUipt, command("?uipt"), answer(
			afield(p.FieldURMS, microVoltType()),
			afield(p.FieldIRMS, microAmpereType()),
			afield(p.FieldPhase, microDegreeType()),
			afield(p.FieldTsFlag, flagType()),
		), p.TagStatus),
		contract(p.CodeGetTransducerID, command("?transducer", "?tdr", "?transducer_id", "?tdr_id"), answer(afield(p.FieldTransducerID, transducerIndexType())), p.TagConfig),
		contract(p.CodeSetTransducerID,
			setterCmd(param(p.FieldTransducerID, transducerIndexType()), "!transducer", "!tdr", "!transducer_id", "!tdr_id"),
			answer(afield(p.FieldTransducerID, transducerIndexType())), p.TagConfig),
		debugContract(p.CodeGetSwf, command("?swf", "get_switching_frequency"), answer(afield(p.FieldSwf, swfType())), p.TagDebug),
		debugContract(p.CodeSetSwf,
			setterCmd(param(p.FieldSwf, swfType()), "!swf", "set_switching_frequency"),
			answer(afield(p.FieldSwf, swfType())), p.TagDebug),
		contract(p.CodeGetWaveform, command("?waveform"), answer(afield(p.FieldWaveform, p.EnumField(p.EnumWaveform))), p.TagConfig),
		contract(p.CodeSetWaveform,
			setterCmd(param(p.FieldWaveform, p.EnumField(p.EnumWaveform)), "!waveform", "set_waveform"),
			answer(afield(p.FieldWaveform, p.EnumField(p.EnumWaveform))), p.TagConfig),
	}
}

func atContracts() []*p.CommandContract {
	idx := func() *p.CommandParamDef { return param(p.FieldIndex, transducerIndexType()) }
	return []*p.CommandContract{
		contract(p.CodeGetAtf, indexedCmd(idx(), "?atf"), answer(afield(p.FieldATF, freqType())), p.TagConfig),
		contract(p.CodeSetAtf,
			indexedSetterCmd(idx(), param(p.FieldATF, freqType()), "!atf"),
			answer(afield(p.FieldATF, freqType())), p.TagConfig),
		contract(p.CodeGetAtk, indexedCmd(idx(), "?atk"), answer(afield(p.FieldATK, flagType())), p.TagConfig),
		contract(p.CodeSetAtk,
			indexedSetterCmd(idx(), param(p.FieldATK, flagType()), "!atk"),
			answer(afield(p.FieldATK, flagType())), p.TagConfig),
		contract(p.CodeGetAtt, indexedCmd(idx(), "?att"), answer(afield(p.FieldATT, tempType())), p.TagConfig),
		contract(p.CodeSetAtt,
			indexedSetterCmd(idx(), param(p.FieldATT, tempType()), "!att"),
			answer(afield(p.FieldATT, tempType())), p.TagConfig),
	}
}

func procedureContracts() []*p.CommandContract {
	procAns := func() *p.AnswerDef { return answer(afield(p.FieldProcedure, p.EnumField(p.EnumProcedure))) }
	echo := func(name p.FieldName, ft p.FieldType) *p.AnswerDef { return answer(afield(name, ft)) }
	cs := []*p.CommandContract{
		contract(p.CodeSetRampFStart, setterCmd(param(p.FieldRampFStart, freqType()), "!ramp_f_start"), echo(p.FieldRampFStart, freqType()), p.TagProcedure),
		contract(p.CodeSetRampFStop, setterCmd(param(p.FieldRampFStop, freqType()), "!ramp_f_stop"), echo(p.FieldRampFStop, freqType()), p.TagProcedure),
		contract(p.CodeSetRampFStep, setterCmd(param(p.FieldRampFStep, freqStepType()), "!ramp_f_step"), echo(p.FieldRampFStep, freqStepType()), p.TagProcedure),
		contract(p.CodeSetRampTOn, setterCmd(param(p.FieldRampTOn, millisType()), "!ramp_t_on"), echo(p.FieldRampTOn, millisType()), p.TagProcedure),
		contract(p.CodeSetRampTOff, setterCmd(param(p.FieldRampTOff, millisType()), "!ramp_t_off"), echo(p.FieldRampTOff, millisType()), p.TagProcedure),
		contract(p.CodeSetRamp, command("!ramp"), procAns(), p.TagProcedure),
		contract(p.CodeGetRamp, command("?ramp"), answer(
			afield(p.FieldRampFStart, freqType()),
			afield(p.FieldRampFStop, freqType()),
			afield(p.FieldRampFStep, freqStepType()),
			afield(p.FieldRampTOn, millisType()),
			afield(p.FieldRampTOff, millisType()),
		), p.TagProcedure),

		contract(p.CodeSetScanFRange, setterCmd(param(p.FieldScanFRange, freqType()), "!scan_f_range"), echo(p.FieldScanFRange, freqType()), p.TagProcedure),
		contract(p.CodeSetScanFStep, setterCmd(param(p.FieldScanFStep, freqStepType()), "!scan_f_step"), echo(p.FieldScanFStep, freqStepType()), p.TagProcedure),
		contract(p.CodeSetScanTStep, setterCmd(param(p.FieldScanTStep, millisType()), "!scan_t_step"), echo(p.FieldScanTStep, millisType()), p.TagProcedure),
		contract(p.CodeSetScanGain, setterCmd(param(p.FieldScanGain, gainType()), "!scan_gain"), echo(p.FieldScanGain, gainType()), p.TagProcedure),
		contract(p.CodeSetScan, command("!scan"), procAns(), p.TagProcedure),
		contract(p.CodeGetScan, command("?scan"), answer(
			afield(p.FieldScanFRange, freqType()),
			afield(p.FieldScanFStep, freqStepType()),
			afield(p.FieldScanTStep, millisType()),
			afield(p.FieldScanGain, gainType()),
		), p.TagProcedure),

		contract(p.CodeSetTuneFStep, setterCmd(param(p.FieldTuneFStep, freqStepType()), "!tune_f_step"), echo(p.FieldTuneFStep, freqStepType()), p.TagProcedure),
		contract(p.CodeSetTuneTTime, setterCmd(param(p.FieldTuneTTime, millisType()), "!tune_t_time"), echo(p.FieldTuneTTime, millisType()), p.TagProcedure),
		contract(p.CodeSetTuneTStep, setterCmd(param(p.FieldTuneTStep, millisType()), "!tune_t_step"), echo(p.FieldTuneTStep, millisType()), p.TagProcedure),
		contract(p.CodeSetTuneGain, setterCmd(param(p.FieldTuneGain, gainType()), "!tune_gain"), echo(p.FieldTuneGain, gainType()), p.TagProcedure),
		contract(p.CodeSetTune, command("!tune"), procAns(), p.TagProcedure),
		contract(p.CodeGetTune, command("?tune"), answer(
			afield(p.FieldTuneFStep, freqStepType()),
			afield(p.FieldTuneTTime, millisType()),
			afield(p.FieldTuneTStep, millisType()),
			afield(p.FieldTuneGain, gainType()),
		), p.TagProcedure),

		contract(p.CodeSetWipeFRange, setterCmd(param(p.FieldWipeFRange, freqType()), "!wipe_f_range"), echo(p.FieldWipeFRange, freqType()), p.TagProcedure),
		contract(p.CodeSetWipeFStep, setterCmd(param(p.FieldWipeFStep, freqStepType()), "!wipe_f_step"), echo(p.FieldWipeFStep, freqStepType()), p.TagProcedure),
		contract(p.CodeSetWipeTOn, setterCmd(param(p.FieldWipeTOn, millisType()), "!wipe_t_on"), echo(p.FieldWipeTOn, millisType()), p.TagProcedure),
		contract(p.CodeSetWipeTOff, setterCmd(param(p.FieldWipeTOff, millisType()), "!wipe_t_off"), echo(p.FieldWipeTOff, millisType()), p.TagProcedure),
		contract(p.CodeSetWipeTPause, setterCmd(param(p.FieldWipeTPause, millisType()), "!wipe_t_pause"), echo(p.FieldWipeTPause, millisType()), p.TagProcedure),
		contract(p.CodeSetWipe, command("!wipe"), procAns(), p.TagProcedure),
		contract(p.CodeGetWipe, command("?wipe"), answer(
			afield(p.FieldWipeFRange, freqType()),
			afield(p.FieldWipeFStep, freqStepType()),
			afield(p.FieldWipeTOn, millisType()),
			afield(p.FieldWipeTOff, millisType()),
			afield(p.FieldWipeTPause, millisType()),
		), p.TagProcedure),

		contract(p.CodeSetAuto, command("!auto"), procAns(), p.TagProcedure),
		contract(p.CodeSetStop, command("!stop"), procAns(), p.TagProcedure),
		contract(p.CodeSetContinue, command("!continue"), procAns(), p.TagProcedure),
		contract(p.CodeSetPause, command("!pause"), procAns(), p.TagProcedure),
	}
	cs = append(cs, dutyCycleContracts()...)
	return cs
}

func dutyCycleContracts() []*p.CommandContract {
	procAns := func() *p.AnswerDef { return answer(afield(p.FieldProcedure, p.EnumField(p.EnumProcedure))) }
	return []*p.CommandContract{
		contract(p.CodeSetDutyCycleTOn, setterCmd(param(p.FieldDutyCycleTOn, millisType()), "!duty_cycle_t_on"), answer(afield(p.FieldDutyCycleTOn, millisType())), p.TagProcedure),
		contract(p.CodeSetDutyCycleTOff, setterCmd(param(p.FieldDutyCycleTOff, millisType()), "!duty_cycle_t_off"), answer(afield(p.FieldDutyCycleTOff, millisType())), p.TagProcedure),
		contract(p.CodeSetDutyCycle, command("!duty_cycle"), procAns(), p.TagProcedure),
		contract(p.CodeGetDutyCycle, command("?duty_cycle"), answer(
			afield(p.FieldDutyCycleTOn, millisType()),
			afield(p.FieldDutyCycleTOff, millisType()),
		), p.TagProcedure),
	}
}

func communicationContracts() []*p.CommandContract {
	return []*p.CommandContract{
		contract(p.CodeSetTermination,
			setterCmd(param(p.FieldTermination, p.EnumField(p.EnumTermination)), "!termination"),
			answer(afield(p.FieldTermination, p.EnumField(p.EnumTermination))), p.TagConfig),
		contract(p.CodeSetCommProtocol,
			setterCmd(param(p.FieldCommProtocol, p.EnumField(p.EnumCommProtocol)), "!com_prot"),
			answer(afield(p.FieldCommProtocol, p.EnumField(p.EnumCommProtocol))), p.TagConfig),
		contract(p.CodeSetPhysComChannel,
			setterCmd(param(p.FieldPhysComChannel, p.EnumField(p.EnumPhysChannel)), "!phys_com_channel"),
			answer(afield(p.FieldPhysComChannel, p.EnumField(p.EnumPhysChannel))), p.TagConfig),
		contract(p.CodeGetLogLevel, command("?log_level"), answer(afield(p.FieldLogLevel, p.EnumField(p.EnumLogLevel))), p.TagConfig),
		contract(p.CodeSetLogLevel,
			setterCmd(param(p.FieldLogLevel, p.EnumField(p.EnumLogLevel)), "!log_level"),
			answer(afield(p.FieldLogLevel, p.EnumField(p.EnumLogLevel))), p.TagConfig),
		contract(p.CodeSetDefault, command("!default"), successAnswer(), p.TagConfig),
	}
}

func flashContracts() []*p.CommandContract {
	return []*p.CommandContract{
		contract(p.CodeSetFlashUSB, command("!flash_usb"), successAnswer(), p.TagFlash),
		contract(p.CodeSetFlash9600, command("!flash_9600"), successAnswer(), p.TagFlash),
		contract(p.CodeSetFlash115200, command("!flash_115200"), successAnswer(), p.TagFlash),
	}
}

func notifyContracts() []*p.CommandContract {
	return []*p.CommandContract{
		contract(p.CodeNotifyMessage, nil, answer(afield(p.FieldMessage, p.StringField())), p.TagNotify),
		contract(p.CodeNotifyProcedureFailure, nil, answer(
			afield(p.FieldProcedure, p.EnumField(p.EnumProcedure)),
			afield(p.FieldMessage, p.StringField()),
		), p.TagNotify),
	}
}

// Crystal devices speak the legacy line protocol and were frozen at this
// layer. Answers are single free-form lines.
func crystalContracts() contractSet {
	text := func() *p.AnswerDef { return answer(afield(p.FieldMessage, p.StringField())) }
	cs := contractSet{}
	cs.add([]*p.CommandContract{
		contract(p.CodeGetProtocol, command("?protocol"), protocolAnswer(), p.TagStatus),
		contract(p.CodeGetInfo, command("?info"), text(), p.TagStatus),
		contract(p.CodeGetUpdate, command("-"), updateAnswer(), p.TagStatus),
		contract(p.CodeGetFreq, command("?f", "?freq"), answer(afield(p.FieldFrequency, freqType())), p.TagStatus),
		contract(p.CodeSetFreq,
			setterCmd(param(p.FieldFrequency, freqType()), "!f", "!freq"),
			answer(afield(p.FieldFrequency, freqType())), p.TagControl),
		contract(p.CodeGetGain, command("?g", "?gain"), answer(afield(p.FieldGain, gainType())), p.TagStatus),
		contract(p.CodeSetGain,
			setterCmd(param(p.FieldGain, gainType()), "!g", "!gain"),
			answer(afield(p.FieldGain, gainType())), p.TagControl),
		contract(p.CodeSetOn, command("!ON"), text(), p.TagControl),
		contract(p.CodeSetOff, command("!OFF"), text(), p.TagControl),
		contract(p.CodeGetTemp, command("?temp"), answer(afield(p.FieldTemperature, tempType())), p.TagStatus),
	})
	return cs
}

// Probe contracts for devices that never answered the handshake. The command
// set is fixed so an operator can still poke at the firmware by hand.
func probeContracts() contractSet {
	raw := func() *p.AnswerDef { return answer(afield(p.FieldUnknownAnswer, p.StringField())) }
	cs := contractSet{}
	cs.add([]*p.CommandContract{
		contract(p.CodeGetProtocol, command("?protocol"), raw(), p.TagStatus),
		contract(p.CodeGetFreq, command("?freq"), raw(), p.TagStatus),
		contract(p.CodeSetFreq, setterCmd(param(p.FieldFrequency, p.IntField(p.UnitHertz, p.PrefixNone, nil, nil)), "!f"), raw(), p.TagControl),
		contract(p.CodeGetGain, command("?gain"), raw(), p.TagStatus),
		contract(p.CodeSetGain, setterCmd(param(p.FieldGain, p.IntField(p.UnitPercent, p.PrefixNone, nil, nil)), "!g"), raw(), p.TagControl),
		contract(p.CodeGetTransducerID, command("?transducer"), raw(), p.TagConfig),
		contract(p.CodeSetTransducerID, setterCmd(param(p.FieldTransducerID, p.SmallIntField(nil, nil)), "!transducer"), raw(), p.TagConfig),
		contract(p.CodeSetOn, command("!ON"), raw(), p.TagControl),
		contract(p.CodeSetOff, command("!OFF"), raw(), p.TagControl),
	})
	return cs
}
