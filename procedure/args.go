package procedure

import (
	"fmt"
	"time"
)

// RampArgs sweeps the output frequency linearly between two bounds, toggling
// the signal around each step to limit thermal load.
type RampArgs struct {
	FStart  int64         `json:"f_start"` // Hz
	FStop   int64         `json:"f_stop"`  // Hz
	FStep   int64         `json:"f_step"`  // Hz
	HoldOn  time.Duration `json:"hold_on"`
	HoldOff time.Duration `json:"hold_off"`
}

func (a *RampArgs) normalize() error {
	if a.FStep == 0 {
		return fmt.Errorf("ramp step must not be zero")
	}
	if a.FStep < 0 {
		a.FStep = -a.FStep
	}
	if a.HoldOn <= 0 {
		a.HoldOn = 500 * time.Millisecond
	}
	if a.HoldOff < 0 {
		a.HoldOff = 0
	}
	return nil
}

// values enumerates the sweep, endpoints included, in either direction.
func (a *RampArgs) values() []int64 {
	var out []int64
	if a.FStart <= a.FStop {
		for f := a.FStart; f <= a.FStop; f += a.FStep {
			out = append(out, f)
		}
	} else {
		for f := a.FStart; f >= a.FStop; f -= a.FStep {
			out = append(out, f)
		}
	}
	return out
}

// ScanArgs sweeps around the current ATF and parks on the best impedance
// match. Executed on the device.
type ScanArgs struct {
	FRange int64 `json:"f_range"` // Hz
	FStep  int64 `json:"f_step"`  // Hz
	TStep  int64 `json:"t_step"`  // ms
	Gain   int64 `json:"gain"`
}

// TuneArgs continuously follows the resonance point. Executed on the device.
type TuneArgs struct {
	FStep int64 `json:"f_step"` // Hz
	TTime int64 `json:"t_time"` // ms
	TStep int64 `json:"t_step"` // ms
	Gain  int64 `json:"gain"`
}

// WipeArgs cycles bursts across a frequency window. Executed on the device.
type WipeArgs struct {
	FRange int64 `json:"f_range"` // Hz
	FStep  int64 `json:"f_step"`  // Hz
	TOn    int64 `json:"t_on"`    // ms
	TOff   int64 `json:"t_off"`   // ms
	TPause int64 `json:"t_pause"` // ms
}

// DutyCycleArgs gates the signal with a fixed on/off pattern. Executed on
// the device.
type DutyCycleArgs struct {
	TOn  int64 `json:"t_on"`  // ms
	TOff int64 `json:"t_off"` // ms
}
