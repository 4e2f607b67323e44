package protocol

import (
	"fmt"
	"strings"
)

// DeviceType identifies the firmware family a device reports in its handshake.
type DeviceType string

const (
	DeviceUnknown      DeviceType = "unknown"
	DeviceDescale      DeviceType = "descale"
	DeviceCatch        DeviceType = "catch"
	DeviceWipe         DeviceType = "wipe"
	DeviceMvpWorker    DeviceType = "mvp_worker"
	DeviceCrystal      DeviceType = "crystal"
	DeviceConfigurator DeviceType = "configurator"
)

func ParseDeviceType(s string) (DeviceType, error) {
	switch DeviceType(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceUnknown:
		return DeviceUnknown, nil
	case DeviceDescale:
		return DeviceDescale, nil
	case DeviceCatch:
		return DeviceCatch, nil
	case DeviceWipe:
		return DeviceWipe, nil
	case DeviceMvpWorker:
		return DeviceMvpWorker, nil
	case DeviceCrystal:
		return DeviceCrystal, nil
	case DeviceConfigurator:
		return DeviceConfigurator, nil
	}
	return DeviceUnknown, fmt.Errorf("unknown device type %q", s)
}

// Kind is the logical data type of a field value.
type Kind uint8

const (
	KindInt Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindFloat
	KindBool
	KindString
	KindVersion
	KindEnum
	KindTimestamp
)

func (k Kind) Integer() bool {
	switch k {
	case KindInt, KindUint8, KindUint16, KindUint32:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVersion:
		return "version"
	case KindEnum:
		return "enum"
	case KindTimestamp:
		return "timestamp"
	}
	return "invalid"
}

// ConverterType selects how a field value crosses the text boundary.
type ConverterType uint8

const (
	ConvPrimitive ConverterType = iota
	ConvEnum
	ConvVersion
	ConvBuildType
	ConvSignal
	ConvTimestamp
)

// EnumSpec declares a closed set of canonical member strings. Parsing is
// case-insensitive but always yields the canonical spelling.
type EnumSpec struct {
	Name    string
	Members []string
}

func (e *EnumSpec) Has(s string) bool {
	for _, m := range e.Members {
		if strings.EqualFold(m, s) {
			return true
		}
	}
	return false
}

func (e *EnumSpec) Canonical(s string) (string, bool) {
	for _, m := range e.Members {
		if strings.EqualFold(m, s) {
			return m, true
		}
	}
	return "", false
}

// Shared enum vocabularies referenced by field types.
var (
	EnumProcedure    = &EnumSpec{Name: "procedure", Members: []string{"none", "auto", "tune", "scan", "wipe", "ramp", "duty_cycle"}}
	EnumWaveform     = &EnumSpec{Name: "waveform", Members: []string{"sine", "square", "triangle"}}
	EnumLogLevel     = &EnumSpec{Name: "log_level", Members: []string{"debug", "info", "warn", "error"}}
	EnumTermination  = &EnumSpec{Name: "termination", Members: []string{"on", "off"}}
	EnumCommProtocol = &EnumSpec{Name: "comm_protocol", Members: []string{"sonic", "modbus"}}
	EnumInputSource  = &EnumSpec{Name: "input_source", Members: []string{"external", "manual", "analog"}}
	EnumPhysChannel  = &EnumSpec{Name: "phys_com_channel", Members: []string{"usb", "rs485", "ttl"}}
	EnumDeviceType   = &EnumSpec{Name: "device_type", Members: []string{"unknown", "descale", "catch", "wipe", "mvp_worker", "crystal", "configurator"}}
)

// ConstName references a device constant to be resolved when a protocol is
// materialized for a concrete device type.
type ConstName string

const (
	ConstMaxFrequency       ConstName = "max_frequency"
	ConstMinFrequency       ConstName = "min_frequency"
	ConstMaxGain            ConstName = "max_gain"
	ConstMinGain            ConstName = "min_gain"
	ConstMaxSwf             ConstName = "max_swf"
	ConstMinSwf             ConstName = "min_swf"
	ConstMaxTransducerIndex ConstName = "max_transducer_index"
	ConstMinTransducerIndex ConstName = "min_transducer_index"
	ConstMaxFrequencyStep   ConstName = "max_frequency_step"
	ConstMinFrequencyStep   ConstName = "min_frequency_step"
)

// Limit is a numeric bound, either literal or a reference to a device
// constant. Resolution replaces references with literal values.
type Limit struct {
	Const ConstName
	Value float64
}

func Lit(v float64) *Limit           { return &Limit{Value: v} }
func Ref(name ConstName) *Limit      { return &Limit{Const: name} }
func (l *Limit) Resolved() bool      { return l == nil || l.Const == "" }

// FieldType declares the value space of a parameter or answer field.
type FieldType struct {
	Kind      Kind
	Enum      *EnumSpec
	Allowed   []string
	Min, Max  *Limit
	Unit      SIUnit
	Prefix    SIPrefix
	Converter ConverterType
}

// CommandParamDef declares one request parameter.
type CommandParamDef struct {
	Name FieldName
	Type FieldType
}

// CommandDef declares how a command is written on the wire. Identifiers are
// alternative spellings for the same command; the first one is used when
// serializing.
type CommandDef struct {
	Identifiers []string
	IndexParam  *CommandParamDef
	SetterParam *CommandParamDef
}

// SonicText returns the spelling used for outgoing requests.
func (d *CommandDef) SonicText() string {
	if d == nil || len(d.Identifiers) == 0 {
		return ""
	}
	return d.Identifiers[0]
}

// AnswerFieldDef declares one field of an answer, in wire order.
type AnswerFieldDef struct {
	Name    FieldName
	Type    FieldType
	Prefix  string
	Postfix string
}

// AnswerDef declares the shape of a command's answer. Fields are separated by
// Separator on the wire.
type AnswerDef struct {
	Fields    []AnswerFieldDef
	Separator string
}

func (d *AnswerDef) separator() string {
	if d == nil || d.Separator == "" {
		return "#"
	}
	return d.Separator
}

// CommandTag groups commands for discovery and UI purposes.
type CommandTag string

const (
	TagControl   CommandTag = "control"
	TagStatus    CommandTag = "status"
	TagProcedure CommandTag = "procedure"
	TagConfig    CommandTag = "config"
	TagDebug     CommandTag = "debug"
	TagFlash     CommandTag = "flash"
	TagNotify    CommandTag = "notify"
)

// CommandContract ties a command code to its wire definitions. A nil Command
// with a non-nil Answer describes a device-initiated notification.
type CommandContract struct {
	Code      CommandCode
	Command   *CommandDef
	Answer    *AnswerDef
	IsRelease bool
	Tags      []CommandTag
}

// ProtocolType keys a materialized protocol.
type ProtocolType struct {
	Version   Version
	Device    DeviceType
	IsRelease bool
	Options   string
}

func (p ProtocolType) String() string {
	mode := "debug"
	if p.IsRelease {
		mode = "release"
	}
	return fmt.Sprintf("%s/%s/%s", p.Device, p.Version, mode)
}

// Common field type shorthands used across contract tables.

func IntField(unit SIUnit, prefix SIPrefix, min, max *Limit) FieldType {
	return FieldType{Kind: KindUint32, Unit: unit, Prefix: prefix, Min: min, Max: max, Converter: ConvPrimitive}
}

func SmallIntField(min, max *Limit) FieldType {
	return FieldType{Kind: KindUint8, Min: min, Max: max, Converter: ConvPrimitive}
}

func StringField() FieldType {
	return FieldType{Kind: KindString, Converter: ConvPrimitive}
}

func BoolField() FieldType {
	return FieldType{Kind: KindBool, Converter: ConvPrimitive}
}

func SignalField() FieldType {
	return FieldType{Kind: KindBool, Converter: ConvSignal}
}

func VersionField() FieldType {
	return FieldType{Kind: KindVersion, Converter: ConvVersion}
}

func BuildTypeField() FieldType {
	return FieldType{Kind: KindBool, Converter: ConvBuildType}
}

func TimestampField() FieldType {
	return FieldType{Kind: KindTimestamp, Converter: ConvTimestamp}
}

func EnumField(e *EnumSpec) FieldType {
	return FieldType{Kind: KindEnum, Enum: e, Converter: ConvEnum}
}
