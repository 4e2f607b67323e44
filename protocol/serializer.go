package protocol

import (
	"fmt"
	"strings"
)

// Command is a request to execute: a command code plus optional index and
// setter arguments. Nil arguments are omitted on the wire.
type Command struct {
	Code   CommandCode
	Index  any
	Setter any
}

// Serialize renders a command as request text per the wire grammar
// "<identifier>[<index>][=<value>]". Argument values are validated against
// the protocol's resolved field types.
func Serialize(p *Protocol, cmd Command) (string, error) {
	entry, ok := p.Lookup(cmd.Code)
	if !ok {
		return "", &CommandNotAvailableError{Code: cmd.Code, Protocol: p.Type}
	}
	def := entry.Contract.Command
	if def == nil {
		return "", fmt.Errorf("command %s is device-initiated and cannot be sent", cmd.Code)
	}
	var b strings.Builder
	b.WriteString(def.SonicText())
	if def.IndexParam != nil {
		if cmd.Index == nil {
			return "", &ValueError{Field: def.IndexParam.Name, Err: fmt.Errorf("index argument required")}
		}
		s, err := renderParam(def.IndexParam, cmd.Index)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	} else if cmd.Index != nil {
		return "", fmt.Errorf("command %s takes no index", cmd.Code)
	}
	if def.SetterParam != nil {
		if cmd.Setter == nil {
			return "", &ValueError{Field: def.SetterParam.Name, Err: fmt.Errorf("value argument required")}
		}
		s, err := renderParam(def.SetterParam, cmd.Setter)
		if err != nil {
			return "", err
		}
		b.WriteString("=")
		b.WriteString(s)
	} else if cmd.Setter != nil {
		return "", fmt.Errorf("command %s takes no value", cmd.Code)
	}
	return b.String(), nil
}

func renderParam(p *CommandParamDef, v any) (string, error) {
	if err := checkLimits(p.Type, v); err != nil {
		return "", &ValueError{Field: p.Name, Err: err}
	}
	s, err := ConverterFor(p.Type).ToString(v)
	if err != nil {
		return "", &ValueError{Field: p.Name, Err: err}
	}
	return s, nil
}

func checkLimits(ft FieldType, v any) error {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	if ft.Min != nil && ft.Min.Resolved() && f < ft.Min.Value {
		return fmt.Errorf("%v below minimum %v", v, ft.Min.Value)
	}
	if ft.Max != nil && ft.Max.Resolved() && f > ft.Max.Value {
		return fmt.Errorf("%v above maximum %v", v, ft.Max.Value)
	}
	return nil
}
