package protocol

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Converter translates one field value across the text boundary of the wire
// protocol. FromString parses device output, ToString renders request values.
type Converter interface {
	FromString(s string) (any, error)
	ToString(v any) (string, error)
}

// ConverterFor returns the converter matching a field type declaration.
func ConverterFor(ft FieldType) Converter {
	switch ft.Converter {
	case ConvEnum:
		return &enumConverter{spec: ft.Enum}
	case ConvVersion:
		return versionConverter{}
	case ConvBuildType:
		return buildTypeConverter{}
	case ConvSignal:
		return signalConverter{}
	case ConvTimestamp:
		return timestampConverter{}
	default:
		return primitiveConverter{kind: ft.Kind}
	}
}

type primitiveConverter struct{ kind Kind }

var boolWords = map[string]bool{
	"true": true, "false": false,
	"on": true, "off": false,
	"yes": true, "no": false,
	"1": true, "0": false,
}

func (c primitiveConverter) FromString(s string) (any, error) {
	s = strings.TrimSpace(s)
	switch c.kind {
	case KindBool:
		v, ok := boolWords[strings.ToLower(s)]
		if !ok {
			return nil, fmt.Errorf("invalid bool %q", s)
		}
		return v, nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return f, nil
	case KindString:
		return s, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		if err := checkIntRange(c.kind, n); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func (c primitiveConverter) ToString(v any) (string, error) {
	switch c.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("expected bool, got %T", v)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case KindFloat:
		f, ok := toFloat(v)
		if !ok {
			return "", fmt.Errorf("expected float, got %T", v)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	default:
		n, ok := toInt(v)
		if !ok {
			return "", fmt.Errorf("expected integer, got %T", v)
		}
		if err := checkIntRange(c.kind, n); err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	}
}

func checkIntRange(k Kind, n int64) error {
	var lo, hi int64
	switch k {
	case KindUint8:
		lo, hi = 0, math.MaxUint8
	case KindUint16:
		lo, hi = 0, math.MaxUint16
	case KindUint32:
		lo, hi = 0, math.MaxUint32
	default:
		return nil
	}
	if n < lo || n > hi {
		return fmt.Errorf("value %d out of range for %s", n, k)
	}
	return nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

type enumConverter struct{ spec *EnumSpec }

func (c *enumConverter) FromString(s string) (any, error) {
	m, ok := c.spec.Canonical(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("%q is not a member of %s", s, c.spec.Name)
	}
	return m, nil
}

func (c *enumConverter) ToString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected %s member, got %T", c.spec.Name, v)
	}
	m, ok := c.spec.Canonical(s)
	if !ok {
		return "", fmt.Errorf("%q is not a member of %s", s, c.spec.Name)
	}
	return m, nil
}

type versionConverter struct{}

func (versionConverter) FromString(s string) (any, error) {
	return ParseVersion(s)
}

func (versionConverter) ToString(v any) (string, error) {
	ver, ok := v.(Version)
	if !ok {
		return "", fmt.Errorf("expected version, got %T", v)
	}
	return fmt.Sprintf("%d.%d.%d", ver.Major, ver.Minor, ver.Patch), nil
}

type buildTypeConverter struct{}

func (buildTypeConverter) FromString(s string) (any, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RELEASE", "1", "TRUE":
		return true, nil
	case "DEBUG", "0", "FALSE":
		return false, nil
	}
	return nil, fmt.Errorf("invalid build type %q", s)
}

func (buildTypeConverter) ToString(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("expected bool, got %T", v)
	}
	if b {
		return "RELEASE", nil
	}
	return "DEBUG", nil
}

type signalConverter struct{}

func (signalConverter) FromString(s string) (any, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1", "TRUE":
		return true, nil
	case "OFF", "0", "FALSE":
		return false, nil
	}
	return nil, fmt.Errorf("invalid signal %q", s)
}

func (signalConverter) ToString(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("expected bool, got %T", v)
	}
	if b {
		return "ON", nil
	}
	return "OFF", nil
}

// Timestamp is a device wall-clock value with second resolution. Devices emit
// "HH:MM:SS DD.MM.YYYY" but are sloppy about separators, so parsing accepts
// any of ":._-" between components.
type Timestamp struct {
	Hour, Minute, Second int
	Day, Month, Year     int
}

const timestampPattern = `(\d{2})[:._\-](\d{2})[:._\-](\d{2}) (\d{2})[:._\-](\d{2})[:._\-](\d{4})`

var timestampRe = regexp.MustCompile(`^` + timestampPattern + `$`)

func ParseTimestamp(s string) (Timestamp, error) {
	m := timestampRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
	}
	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }
	ts := Timestamp{
		Hour: atoi(m[1]), Minute: atoi(m[2]), Second: atoi(m[3]),
		Day: atoi(m[4]), Month: atoi(m[5]), Year: atoi(m[6]),
	}
	if ts.Hour > 23 || ts.Minute > 59 || ts.Second > 59 || ts.Day < 1 || ts.Day > 31 || ts.Month < 1 || ts.Month > 12 {
		return Timestamp{}, fmt.Errorf("timestamp %q out of range", s)
	}
	return ts, nil
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Day: t.Day(), Month: int(t.Month()), Year: t.Year(),
	}
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d %02d.%02d.%04d", t.Hour, t.Minute, t.Second, t.Day, t.Month, t.Year)
}

func (t Timestamp) Time(loc *time.Location) time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, loc)
}

type timestampConverter struct{}

func (timestampConverter) FromString(s string) (any, error) {
	return ParseTimestamp(s)
}

func (timestampConverter) ToString(v any) (string, error) {
	ts, ok := v.(Timestamp)
	if !ok {
		return "", fmt.Errorf("expected timestamp, got %T", v)
	}
	return ts.String(), nil
}

// ScaleToDevice converts a caller-supplied value in prefix from to the field's
// declared prefix. Integer field kinds reject results that are not whole.
func ScaleToDevice(ft FieldType, v any, from SIPrefix) (any, error) {
	scaled, err := Rescale(v, from, ft.Prefix)
	if err != nil {
		return nil, err
	}
	if ft.Kind.Integer() {
		if _, ok := toInt(scaled); !ok {
			return nil, fmt.Errorf("value %v does not scale to a whole %s", v, ft.Kind)
		}
	}
	return scaled, nil
}
