package procedure

import (
	"context"

	"github.com/soniccontrol/sonicctl/device"
	p "github.com/soniccontrol/sonicctl/protocol"
)

// Scan runs the firmware scan procedure.
type Scan struct {
	Args ScanArgs
}

func (s *Scan) Name() string { return "scan" }

func (s *Scan) Run(ctx context.Context, dev *device.Device) error {
	cfg := []p.Command{
		p.SetScanFRange(s.Args.FRange),
		p.SetScanFStep(s.Args.FStep),
		p.SetScanTStep(s.Args.TStep),
		p.SetScanGain(s.Args.Gain),
	}
	return runRemote(ctx, dev, cfg, p.SetScan())
}

// Tune runs the firmware tune procedure.
type Tune struct {
	Args TuneArgs
}

func (t *Tune) Name() string { return "tune" }

func (t *Tune) Run(ctx context.Context, dev *device.Device) error {
	cfg := []p.Command{
		p.SetTuneFStep(t.Args.FStep),
		p.SetTuneTTime(t.Args.TTime),
		p.SetTuneTStep(t.Args.TStep),
		p.SetTuneGain(t.Args.Gain),
	}
	return runRemote(ctx, dev, cfg, p.SetTune())
}

// Wipe runs the firmware wipe procedure.
type Wipe struct {
	Args WipeArgs
}

func (w *Wipe) Name() string { return "wipe" }

func (w *Wipe) Run(ctx context.Context, dev *device.Device) error {
	cfg := []p.Command{
		p.SetWipeFRange(w.Args.FRange),
		p.SetWipeFStep(w.Args.FStep),
		p.SetWipeTOn(w.Args.TOn),
		p.SetWipeTOff(w.Args.TOff),
		p.SetWipeTPause(w.Args.TPause),
	}
	return runRemote(ctx, dev, cfg, p.SetWipe())
}

// DutyCycle runs the firmware duty cycle procedure.
type DutyCycle struct {
	Args DutyCycleArgs
}

func (d *DutyCycle) Name() string { return "duty_cycle" }

func (d *DutyCycle) Run(ctx context.Context, dev *device.Device) error {
	cfg := []p.Command{
		p.SetDutyCycleTOn(d.Args.TOn),
		p.SetDutyCycleTOff(d.Args.TOff),
	}
	return runRemote(ctx, dev, cfg, p.SetDutyCycle())
}
