package protocol

import "time"

// Answer is the outcome of validating one device response against an
// AnswerDef. Valid is false when the text did not match or a field failed to
// convert; the raw Message is kept either way.
type Answer struct {
	Message      string
	Valid        bool
	WasValidated bool
	Code         CommandCode
	Fields       map[FieldName]any
	Received     time.Time
}

func (a *Answer) Value(name FieldName) (any, bool) {
	v, ok := a.Fields[name]
	return v, ok
}

func (a *Answer) Int(name FieldName) (int64, bool) {
	v, ok := a.Fields[name]
	if !ok {
		return 0, false
	}
	n, ok := toInt(v)
	return n, ok
}

func (a *Answer) Bool(name FieldName) (bool, bool) {
	v, ok := a.Fields[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (a *Answer) String(name FieldName) (string, bool) {
	v, ok := a.Fields[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
