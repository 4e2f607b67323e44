package remote

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/soniccontrol/sonicctl/procedure"
)

// BuildProcedure decodes the JSON argument body for a named procedure. An
// empty body selects the argument defaults.
func BuildProcedure(name string, body io.Reader) (procedure.Procedure, error) {
	decode := func(v any) error {
		err := json.NewDecoder(body).Decode(v)
		if err == io.EOF {
			return nil
		}
		return err
	}
	switch name {
	case "ramp":
		var args procedure.RampArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.LocalRamp{Args: args}, nil
	case "ramp_remote":
		var args procedure.RampArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.RemoteRamp{Args: args}, nil
	case "scan":
		var args procedure.ScanArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.Scan{Args: args}, nil
	case "tune":
		var args procedure.TuneArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.Tune{Args: args}, nil
	case "wipe":
		var args procedure.WipeArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.Wipe{Args: args}, nil
	case "duty_cycle":
		var args procedure.DutyCycleArgs
		if err := decode(&args); err != nil {
			return nil, err
		}
		return &procedure.DutyCycle{Args: args}, nil
	}
	return nil, fmt.Errorf("unknown procedure %q", name)
}
