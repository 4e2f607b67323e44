package registry

import "github.com/soniccontrol/sonicctl/protocol"

// Field type and contract constructors shared by the version tables. Every
// call builds fresh values so resolution may rewrite limits in place.

func freqType() protocol.FieldType {
	return protocol.IntField(protocol.UnitHertz, protocol.PrefixNone,
		protocol.Ref(protocol.ConstMinFrequency), protocol.Ref(protocol.ConstMaxFrequency))
}

func freqStepType() protocol.FieldType {
	return protocol.IntField(protocol.UnitHertz, protocol.PrefixNone,
		protocol.Ref(protocol.ConstMinFrequencyStep), protocol.Ref(protocol.ConstMaxFrequencyStep))
}

func gainType() protocol.FieldType {
	return protocol.IntField(protocol.UnitPercent, protocol.PrefixNone,
		protocol.Ref(protocol.ConstMinGain), protocol.Ref(protocol.ConstMaxGain))
}

func swfType() protocol.FieldType {
	return protocol.SmallIntField(protocol.Ref(protocol.ConstMinSwf), protocol.Ref(protocol.ConstMaxSwf))
}

func transducerIndexType() protocol.FieldType {
	return protocol.SmallIntField(protocol.Ref(protocol.ConstMinTransducerIndex), protocol.Ref(protocol.ConstMaxTransducerIndex))
}

func tempType() protocol.FieldType {
	return protocol.FieldType{Kind: protocol.KindInt, Unit: protocol.UnitKelvin, Prefix: protocol.PrefixMilli}
}

func millisType() protocol.FieldType {
	return protocol.IntField(protocol.UnitSecond, protocol.PrefixMilli, protocol.Lit(0), protocol.Lit(3_600_000))
}

func microVoltType() protocol.FieldType {
	return protocol.IntField(protocol.UnitVolt, protocol.PrefixMicro, nil, nil)
}

func microAmpereType() protocol.FieldType {
	return protocol.IntField(protocol.UnitAmpere, protocol.PrefixMicro, nil, nil)
}

func microDegreeType() protocol.FieldType {
	return protocol.FieldType{Kind: protocol.KindInt, Unit: protocol.UnitDegree, Prefix: protocol.PrefixMicro}
}

func errorCodeType() protocol.FieldType {
	return protocol.FieldType{Kind: protocol.KindUint16}
}

func flagType() protocol.FieldType {
	return protocol.SmallIntField(nil, nil)
}

func adcType() protocol.FieldType {
	return protocol.IntField(protocol.UnitVolt, protocol.PrefixMicro, nil, nil)
}

func param(name protocol.FieldName, ft protocol.FieldType) *protocol.CommandParamDef {
	return &protocol.CommandParamDef{Name: name, Type: ft}
}

func afield(name protocol.FieldName, ft protocol.FieldType) protocol.AnswerFieldDef {
	return protocol.AnswerFieldDef{Name: name, Type: ft}
}

func answer(fields ...protocol.AnswerFieldDef) *protocol.AnswerDef {
	return &protocol.AnswerDef{Fields: fields, Separator: "#"}
}

func command(idents ...string) *protocol.CommandDef {
	return &protocol.CommandDef{Identifiers: idents}
}

func setterCmd(p *protocol.CommandParamDef, idents ...string) *protocol.CommandDef {
	return &protocol.CommandDef{Identifiers: idents, SetterParam: p}
}

func indexedCmd(idx *protocol.CommandParamDef, idents ...string) *protocol.CommandDef {
	return &protocol.CommandDef{Identifiers: idents, IndexParam: idx}
}

func indexedSetterCmd(idx, set *protocol.CommandParamDef, idents ...string) *protocol.CommandDef {
	return &protocol.CommandDef{Identifiers: idents, IndexParam: idx, SetterParam: set}
}

func contract(code protocol.CommandCode, cmd *protocol.CommandDef, ans *protocol.AnswerDef, tags ...protocol.CommandTag) *protocol.CommandContract {
	return &protocol.CommandContract{Code: code, Command: cmd, Answer: ans, IsRelease: true, Tags: tags}
}

func debugContract(code protocol.CommandCode, cmd *protocol.CommandDef, ans *protocol.AnswerDef, tags ...protocol.CommandTag) *protocol.CommandContract {
	c := contract(code, cmd, ans, tags...)
	c.IsRelease = false
	return c
}

func successAnswer() *protocol.AnswerDef {
	return answer(afield(protocol.FieldSuccess, protocol.BoolField()))
}
