package device

import (
	"time"

	p "github.com/soniccontrol/sonicctl/protocol"
)

// Status is the last known operating state of a device, merged from every
// validated answer. Values are normalized to fixed prefixes regardless of
// what the active protocol version puts on the wire.
type Status struct {
	ErrorCode        int64     `json:"error_code"`
	Frequency        int64     `json:"frequency"` // Hz
	Gain             int64     `json:"gain"`      // percent
	Procedure        string    `json:"procedure"`
	TempMilliKelvin  int64     `json:"temp_mk"`
	URMSMicroVolt    int64     `json:"urms_uv"`
	IRMSMicroAmpere  int64     `json:"irms_ua"`
	PhaseMicroDegree int64     `json:"phase_udeg"`
	Signal           bool      `json:"signal"`
	TsFlag           int64     `json:"ts_flag"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s Status) TempCelsius() float64 {
	return float64(s.TempMilliKelvin)/1000 - 273.15
}

// statusPrefix maps answer fields into the prefix Status stores them in.
var statusPrefix = map[p.FieldName]p.SIPrefix{
	p.FieldFrequency:   p.PrefixNone,
	p.FieldGain:        p.PrefixNone,
	p.FieldTemperature: p.PrefixMilli,
	p.FieldURMS:        p.PrefixMicro,
	p.FieldIRMS:        p.PrefixMicro,
	p.FieldPhase:       p.PrefixMicro,
}

// apply merges one validated answer. Field defs supply the wire prefix so
// values can be rescaled to the canonical one.
func (s *Status) apply(entry *p.CommandEntry, ans *p.Answer) bool {
	if !ans.Valid {
		return false
	}
	changed := false
	for _, def := range entry.Contract.Answer.Fields {
		v, ok := ans.Fields[def.Name]
		if !ok {
			continue
		}
		if target, scale := statusPrefix[def.Name]; scale {
			if scaled, err := p.Rescale(v, def.Type.Prefix, target); err == nil {
				v = scaled
			}
		}
		if s.applyField(def.Name, v) {
			changed = true
		}
	}
	if changed {
		s.UpdatedAt = ans.Received
	}
	return changed
}

func (s *Status) applyField(name p.FieldName, v any) bool {
	switch name {
	case p.FieldErrorCode:
		return setInt(&s.ErrorCode, v)
	case p.FieldFrequency:
		return setInt(&s.Frequency, v)
	case p.FieldGain:
		return setInt(&s.Gain, v)
	case p.FieldProcedure:
		if str, ok := v.(string); ok && s.Procedure != str {
			s.Procedure = str
			return true
		}
		return false
	case p.FieldTemperature:
		return setInt(&s.TempMilliKelvin, v)
	case p.FieldURMS:
		return setInt(&s.URMSMicroVolt, v)
	case p.FieldIRMS:
		return setInt(&s.IRMSMicroAmpere, v)
	case p.FieldPhase:
		return setInt(&s.PhaseMicroDegree, v)
	case p.FieldSignal:
		if b, ok := v.(bool); ok {
			s.Signal = b
			return true
		}
		return false
	case p.FieldTsFlag:
		return setInt(&s.TsFlag, v)
	}
	return false
}

func setInt(dst *int64, v any) bool {
	n, ok := v.(int64)
	if !ok {
		if f, isf := v.(float64); isf {
			n = int64(f)
		} else {
			return false
		}
	}
	*dst = n
	return true
}
