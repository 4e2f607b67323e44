package protocol

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AfterField derives an additional answer field from the already converted
// ones. Derivation runs after all wire fields converted successfully.
type AfterField struct {
	Name    FieldName
	Compute func(fields map[FieldName]any) (any, error)
}

// Validator matches raw answer text against an AnswerDef with one compiled
// regular expression and converts each captured field.
type Validator struct {
	def   *AnswerDef
	re    *regexp.Regexp
	slots []fieldSlot
	after []AfterField
}

type fieldSlot struct {
	def   AnswerFieldDef
	conv  Converter
	group int
}

const timestampWirePattern = `\d{2}[:._\-]\d{2}[:._\-]\d{2} \d{2}[:._\-]\d{2}[:._\-]\d{4}`

func fieldPattern(ft FieldType) string {
	switch ft.Converter {
	case ConvSignal:
		return `ON|OFF|1|0|TRUE|FALSE`
	case ConvBuildType:
		return `RELEASE|DEBUG|1|0|TRUE|FALSE`
	case ConvVersion:
		return `v?\d+\.\d+\.\d+`
	case ConvTimestamp:
		return timestampWirePattern
	case ConvEnum:
		alts := make([]string, len(ft.Enum.Members))
		for i, m := range ft.Enum.Members {
			alts[i] = regexp.QuoteMeta(m)
		}
		return strings.Join(alts, "|")
	}
	switch {
	case ft.Kind.Integer():
		return `-?\d+`
	case ft.Kind == KindFloat:
		return `-?\d+(?:\.\d+)?`
	case ft.Kind == KindBool:
		return `true|false|on|off|yes|no|1|0`
	default:
		return `.+?`
	}
}

// NewValidator compiles the matcher for an answer shape. Field names must be
// unique within the definition.
func NewValidator(def *AnswerDef, after ...AfterField) (*Validator, error) {
	if def == nil {
		return nil, fmt.Errorf("nil answer definition")
	}
	seen := map[FieldName]bool{}
	var b strings.Builder
	b.WriteString(`(?is)^`)
	sep := regexp.QuoteMeta(def.separator())
	for i, f := range def.Fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate answer field %q", f.Name)
		}
		seen[f.Name] = true
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(regexp.QuoteMeta(f.Prefix))
		fmt.Fprintf(&b, `(?P<%s>%s)`, f.Name, fieldPattern(f.Type))
		b.WriteString(regexp.QuoteMeta(f.Postfix))
	}
	b.WriteString(`$`)
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("answer pattern: %w", err)
	}
	v := &Validator{def: def, re: re, after: after}
	for _, f := range def.Fields {
		v.slots = append(v.slots, fieldSlot{
			def:   f,
			conv:  ConverterFor(f.Type),
			group: re.SubexpIndex(string(f.Name)),
		})
	}
	return v, nil
}

func (v *Validator) Pattern() string { return v.re.String() }

// Validate matches msg and converts every field. The returned answer carries
// the raw message even when invalid.
func (v *Validator) Validate(msg string) Answer {
	ans := Answer{
		Message:      strings.TrimRight(msg, "\r\n"),
		WasValidated: true,
		Fields:       map[FieldName]any{},
		Received:     time.Now(),
	}
	m := v.re.FindStringSubmatch(ans.Message)
	if m == nil {
		return ans
	}
	for _, slot := range v.slots {
		val, err := slot.conv.FromString(m[slot.group])
		if err != nil {
			ans.Fields = map[FieldName]any{}
			return ans
		}
		ans.Fields[slot.def.Name] = val
	}
	for _, af := range v.after {
		val, err := af.Compute(ans.Fields)
		if err != nil {
			ans.Fields = map[FieldName]any{}
			return ans
		}
		ans.Fields[af.Name] = val
	}
	ans.Valid = true
	return ans
}
