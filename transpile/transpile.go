// Package transpile renders resolved protocols as a C header so firmware and
// host share one protocol description. Output is static const data only; the
// firmware build embeds it without a runtime.
package transpile

import (
	"fmt"
	"sort"
	"strings"

	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
)

// Transpiler accumulates protocols and emits one header. Identical field
// limits, params and answer shapes are emitted once and shared by pointer.
type Transpiler struct {
	protos []*p.Protocol

	defs     strings.Builder
	interned map[string]string
	counters map[string]int
}

func New() *Transpiler {
	return &Transpiler{
		interned: map[string]string{},
		counters: map[string]int{},
	}
}

// Add registers a resolved protocol for emission.
func (t *Transpiler) Add(proto *p.Protocol) {
	t.protos = append(t.protos, proto)
}

// AddTarget resolves and registers a protocol by type.
func (t *Transpiler) AddTarget(pt p.ProtocolType) error {
	proto, err := registry.Resolve(pt)
	if err != nil {
		return err
	}
	t.Add(proto)
	return nil
}

// Generate renders the header for all added protocols.
func (t *Transpiler) Generate() (string, error) {
	if len(t.protos) == 0 {
		return "", fmt.Errorf("no protocols to transpile")
	}
	var out strings.Builder
	out.WriteString("/* Generated protocol tables. Do not edit by hand. */\n")
	out.WriteString("#ifndef SONIC_PROTOCOL_DEFS_H\n#define SONIC_PROTOCOL_DEFS_H\n\n")
	out.WriteString("#include <stdbool.h>\n#include <stddef.h>\n#include <stdint.h>\n\n")

	t.writeEnums(&out)
	t.writeStructs(&out)

	var protoDecls []string
	for _, proto := range t.protos {
		sym, err := t.emitProtocol(proto)
		if err != nil {
			return "", err
		}
		protoDecls = append(protoDecls, sym)
	}

	out.WriteString(t.defs.String())

	out.WriteString("static const Protocol *const protocols[] = {\n")
	for _, sym := range protoDecls {
		fmt.Fprintf(&out, "    &%s,\n", sym)
	}
	out.WriteString("};\n")
	fmt.Fprintf(&out, "enum { PROTOCOL_COUNT = %d };\n\n", len(protoDecls))

	t.writeStringTables(&out)
	out.WriteString("#endif /* SONIC_PROTOCOL_DEFS_H */\n")
	return out.String(), nil
}

// intern emits a definition once and returns its symbol on every repeat.
func (t *Transpiler) intern(kind, body string) string {
	key := kind + "\x00" + body
	if sym, ok := t.interned[key]; ok {
		return sym
	}
	t.counters[kind]++
	sym := fmt.Sprintf("%s_%d", kind, t.counters[kind])
	t.interned[key] = sym
	fmt.Fprintf(&t.defs, body, sym)
	return sym
}

func (t *Transpiler) writeEnums(out *strings.Builder) {
	// Command codes used by any added protocol, in numeric order.
	codeSet := map[p.CommandCode]bool{}
	for _, proto := range t.protos {
		for code := range proto.Commands {
			codeSet[code] = true
		}
	}
	codes := make([]p.CommandCode, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	out.WriteString("typedef enum {\n")
	for _, c := range codes {
		fmt.Fprintf(out, "    %s = %d,\n", commandCodeName(c), c)
	}
	out.WriteString("} CommandCode;\n\n")

	names := t.fieldNames()
	out.WriteString("typedef enum {\n")
	for i, n := range names {
		fmt.Fprintf(out, "    %s = %d,\n", fieldNameName(n), i)
	}
	out.WriteString("} FieldName;\n\n")

	out.WriteString("typedef enum {\n")
	for i, dt := range []p.DeviceType{p.DeviceUnknown, p.DeviceDescale, p.DeviceCatch, p.DeviceWipe, p.DeviceMvpWorker, p.DeviceCrystal, p.DeviceConfigurator} {
		fmt.Fprintf(out, "    DEVICE_%s = %d,\n", strings.ToUpper(string(dt)), i)
	}
	out.WriteString("} DeviceType;\n\n")

	out.WriteString("typedef enum {\n")
	for _, u := range []struct {
		unit p.SIUnit
		name string
	}{
		{p.UnitNone, "NONE"}, {p.UnitMeter, "METER"}, {p.UnitSecond, "SECOND"},
		{p.UnitHertz, "HERTZ"}, {p.UnitCelsius, "CELSIUS"}, {p.UnitKelvin, "KELVIN"},
		{p.UnitVolt, "VOLT"}, {p.UnitAmpere, "AMPERE"}, {p.UnitDegree, "DEGREE"},
		{p.UnitPercent, "PERCENT"},
	} {
		fmt.Fprintf(out, "    SI_UNIT_%s = %d,\n", u.name, u.unit)
	}
	out.WriteString("} SIUnit;\n\n")

	// Prefix values are base-10 exponents, same as on the host side.
	out.WriteString("typedef enum {\n")
	for _, pre := range []struct {
		prefix p.SIPrefix
		name   string
	}{
		{p.PrefixNano, "NANO"}, {p.PrefixMicro, "MICRO"}, {p.PrefixMilli, "MILLI"},
		{p.PrefixCenti, "CENTI"}, {p.PrefixDeci, "DECI"}, {p.PrefixNone, "NONE"},
		{p.PrefixDeca, "DECA"}, {p.PrefixHecto, "HECTO"}, {p.PrefixKilo, "KILO"},
		{p.PrefixMega, "MEGA"}, {p.PrefixGiga, "GIGA"},
	} {
		fmt.Fprintf(out, "    SI_PREFIX_%s = %d,\n", pre.name, pre.prefix)
	}
	out.WriteString("} SIPrefix;\n\n")

	out.WriteString("typedef enum {\n")
	for i, k := range []string{"INT", "UINT8", "UINT16", "UINT32", "FLOAT", "BOOL", "STRING", "VERSION", "ENUM", "TIMESTAMP"} {
		fmt.Fprintf(out, "    DATA_%s = %d,\n", k, i)
	}
	out.WriteString("} DataType;\n\n")
}

func (t *Transpiler) writeStructs(out *strings.Builder) {
	out.WriteString(`typedef struct {
    bool has_min;
    bool has_max;
    double min;
    double max;
} FieldLimits;

typedef struct {
    DataType data_type;
    SIUnit si_unit;
    SIPrefix si_prefix;
    const FieldLimits *limits;
    const char *const *enum_members;
    size_t enum_member_count;
} FieldTypeDef;

typedef struct {
    FieldName name;
    const FieldTypeDef *type;
} ParamDef;

typedef struct {
    FieldName name;
    const FieldTypeDef *type;
    const char *prefix;
    const char *postfix;
} AnswerFieldDef;

typedef struct {
    CommandCode code;
    const char *const *identifiers;
    size_t identifier_count;
    const ParamDef *index_param;
    const ParamDef *setter_param;
    const AnswerFieldDef *answer_fields;
    size_t answer_field_count;
    bool is_release;
} CommandDef;

typedef struct {
    DeviceType device;
    uint16_t version_major;
    uint16_t version_minor;
    uint16_t version_patch;
    bool is_release;
    const CommandDef *commands;
    size_t command_count;
} Protocol;

`)
}

func (t *Transpiler) emitFieldType(ft p.FieldType) string {
	limits := "NULL"
	if ft.Min != nil || ft.Max != nil {
		var minVal, maxVal float64
		hasMin, hasMax := ft.Min != nil, ft.Max != nil
		if hasMin {
			minVal = ft.Min.Value
		}
		if hasMax {
			maxVal = ft.Max.Value
		}
		body := fmt.Sprintf("static const FieldLimits %%s = {%v, %v, %s, %s};\n",
			hasMin, hasMax, formatC(minVal), formatC(maxVal))
		limits = "&" + t.intern("limits", body)
	}
	members := "NULL"
	memberCount := 0
	if ft.Enum != nil {
		var b strings.Builder
		b.WriteString("static const char *const %s[] = {")
		for i, m := range ft.Enum.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q", m)
		}
		b.WriteString("};\n")
		members = t.intern("enum_members", b.String())
		memberCount = len(ft.Enum.Members)
	}
	body := fmt.Sprintf("static const FieldTypeDef %%s = {DATA_%s, SI_UNIT_%s, %d, %s, %s, %d};\n",
		dataTypeName(ft.Kind), siUnitName(ft.Unit), ft.Prefix, limits, members, memberCount)
	return t.intern("field_type", body)
}

func (t *Transpiler) emitParam(d *p.CommandParamDef) string {
	if d == nil {
		return "NULL"
	}
	ftSym := t.emitFieldType(d.Type)
	body := fmt.Sprintf("static const ParamDef %%s = {%s, &%s};\n", fieldNameName(d.Name), ftSym)
	return "&" + t.intern("param", body)
}

func (t *Transpiler) emitAnswerFields(def *p.AnswerDef) (string, int) {
	var b strings.Builder
	b.WriteString("static const AnswerFieldDef %s[] = {\n")
	for _, f := range def.Fields {
		ftSym := t.emitFieldType(f.Type)
		fmt.Fprintf(&b, "    {%s, &%s, %q, %q},\n", fieldNameName(f.Name), ftSym, f.Prefix, f.Postfix)
	}
	b.WriteString("};\n")
	return t.intern("answer_fields", b.String()), len(def.Fields)
}

func (t *Transpiler) emitIdentifiers(idents []string) (string, int) {
	if len(idents) == 0 {
		return "NULL", 0
	}
	var b strings.Builder
	b.WriteString("static const char *const %s[] = {")
	for i, id := range idents {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", id)
	}
	b.WriteString("};\n")
	return t.intern("identifiers", b.String()), len(idents)
}

func (t *Transpiler) emitProtocol(proto *p.Protocol) (string, error) {
	var cmds strings.Builder
	cmds.WriteString("static const CommandDef %s[] = {\n")
	for _, code := range proto.Codes() {
		entry := proto.Commands[code]
		c := entry.Contract
		idents, identCount := "NULL", 0
		indexParam, setterParam := "NULL", "NULL"
		if c.Command != nil {
			idents, identCount = t.emitIdentifiers(c.Command.Identifiers)
			indexParam = t.emitParam(c.Command.IndexParam)
			setterParam = t.emitParam(c.Command.SetterParam)
		}
		ansSym, ansCount := t.emitAnswerFields(c.Answer)
		fmt.Fprintf(&cmds, "    {%s, %s, %d, %s, %s, %s, %d, %v},\n",
			commandCodeName(code), idents, identCount, indexParam, setterParam, ansSym, ansCount, c.IsRelease)
	}
	cmds.WriteString("};\n")
	cmdSym := t.intern("commands", cmds.String())

	sym := fmt.Sprintf("protocol_%s_v%d_%d_%d_%s",
		proto.Type.Device, proto.Type.Version.Major, proto.Type.Version.Minor, proto.Type.Version.Patch,
		buildSuffix(proto.Type.IsRelease))
	fmt.Fprintf(&t.defs, "static const Protocol %s = {DEVICE_%s, %d, %d, %d, %v, %s, %d};\n\n",
		sym, strings.ToUpper(string(proto.Type.Device)),
		proto.Type.Version.Major, proto.Type.Version.Minor, proto.Type.Version.Patch,
		proto.Type.IsRelease, cmdSym, len(proto.Commands))
	return sym, nil
}

// writeStringTables emits enum to string conversions for diagnostics.
func (t *Transpiler) writeStringTables(out *strings.Builder) {
	codeSet := map[p.CommandCode]bool{}
	for _, proto := range t.protos {
		for code := range proto.Commands {
			codeSet[code] = true
		}
	}
	codes := make([]p.CommandCode, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	out.WriteString("static inline const char *command_code_to_string(CommandCode c) {\n    switch (c) {\n")
	for _, c := range codes {
		fmt.Fprintf(out, "    case %s: return %q;\n", commandCodeName(c), strings.ToLower(strings.TrimPrefix(commandCodeName(c), "CMD_")))
	}
	out.WriteString("    default: return \"unknown\";\n    }\n}\n\n")

	names := t.fieldNames()
	out.WriteString("static inline const char *field_name_to_string(FieldName f) {\n    switch (f) {\n")
	for _, n := range names {
		fmt.Fprintf(out, "    case %s: return %q;\n", fieldNameName(n), string(n))
	}
	out.WriteString("    default: return \"undefined\";\n    }\n}\n\n")
}

// fieldNames collects every field name referenced by the added protocols, in
// stable order.
func (t *Transpiler) fieldNames() []p.FieldName {
	set := map[p.FieldName]bool{}
	for _, proto := range t.protos {
		for _, entry := range proto.Commands {
			c := entry.Contract
			if c.Command != nil {
				if c.Command.IndexParam != nil {
					set[c.Command.IndexParam.Name] = true
				}
				if c.Command.SetterParam != nil {
					set[c.Command.SetterParam.Name] = true
				}
			}
			for _, f := range c.Answer.Fields {
				set[f.Name] = true
			}
		}
	}
	names := make([]p.FieldName, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func formatC(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func buildSuffix(release bool) string {
	if release {
		return "release"
	}
	return "debug"
}

func fieldNameName(n p.FieldName) string {
	return "FIELD_" + strings.ToUpper(string(n))
}

func dataTypeName(k p.Kind) string {
	return strings.ToUpper(k.String())
}

func siUnitName(u p.SIUnit) string {
	switch u {
	case p.UnitMeter:
		return "METER"
	case p.UnitSecond:
		return "SECOND"
	case p.UnitHertz:
		return "HERTZ"
	case p.UnitCelsius:
		return "CELSIUS"
	case p.UnitKelvin:
		return "KELVIN"
	case p.UnitVolt:
		return "VOLT"
	case p.UnitAmpere:
		return "AMPERE"
	case p.UnitDegree:
		return "DEGREE"
	case p.UnitPercent:
		return "PERCENT"
	}
	return "NONE"
}
