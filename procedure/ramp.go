package procedure

import (
	"context"
	"fmt"
	"time"

	"github.com/soniccontrol/sonicctl/device"
	p "github.com/soniccontrol/sonicctl/protocol"
)

// Procedure is a long-running operation driven against one device. Run
// returns when the procedure completes, fails or ctx is cancelled; cleanup
// that must survive cancellation is the controller's job.
type Procedure interface {
	Name() string
	Run(ctx context.Context, dev *device.Device) error
}

// LocalRamp performs the frequency sweep from the host: one set-frequency
// command per step with the signal gated around it. Works on every firmware
// that can set a frequency, including legacy units.
type LocalRamp struct {
	Args RampArgs
}

func (r *LocalRamp) Name() string { return "ramp" }

func (r *LocalRamp) Run(ctx context.Context, dev *device.Device) error {
	if err := r.Args.normalize(); err != nil {
		return err
	}
	gated := r.Args.HoldOff > 0
	if !gated {
		if _, err := dev.SetSignalOn(ctx); err != nil {
			return err
		}
	}
	for _, f := range r.Args.values() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := dev.SetFrequency(ctx, f); err != nil {
			return err
		}
		if gated {
			if _, err := dev.SetSignalOn(ctx); err != nil {
				return err
			}
		}
		if err := sleep(ctx, r.Args.HoldOn); err != nil {
			return err
		}
		if gated {
			if _, err := dev.SetSignalOff(ctx); err != nil {
				return err
			}
			if err := sleep(ctx, r.Args.HoldOff); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoteRamp configures the sweep registers and lets the firmware run it.
type RemoteRamp struct {
	Args RampArgs
}

func (r *RemoteRamp) Name() string { return "ramp" }

func (r *RemoteRamp) Run(ctx context.Context, dev *device.Device) error {
	if err := r.Args.normalize(); err != nil {
		return err
	}
	cfg := []p.Command{
		p.SetRampFStart(r.Args.FStart),
		p.SetRampFStop(r.Args.FStop),
		p.SetRampFStep(r.Args.FStep),
		p.SetRampTOn(r.Args.HoldOn.Milliseconds()),
		p.SetRampTOff(r.Args.HoldOff.Milliseconds()),
	}
	return runRemote(ctx, dev, cfg, p.SetRamp())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runRemote pushes the argument registers, starts the procedure and waits
// for the firmware to report it finished. Progress is observed through the
// status snapshot, so a running updater is required.
func runRemote(ctx context.Context, dev *device.Device, cfg []p.Command, start p.Command) error {
	for _, cmd := range cfg {
		ans, err := dev.Execute(ctx, cmd)
		if err != nil {
			return err
		}
		if !ans.Valid {
			return fmt.Errorf("device rejected %q", ans.Message)
		}
	}
	if _, err := dev.Execute(ctx, start); err != nil {
		return err
	}
	return waitRemote(ctx, dev)
}

// waitRemote blocks until the status procedure field returns to idle. A
// short grace period covers the gap before the first poll sees it running.
func waitRemote(ctx context.Context, dev *device.Device) error {
	events, cancel := dev.Bus().Subscribe(device.TopicStatus, 16)
	defer cancel()

	seenRunning := false
	grace := time.After(5 * time.Second)
	for {
		select {
		case <-ctx.Done():
			// Halt the firmware-side procedure before giving up.
			stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			dev.Execute(stopCtx, p.SetStop())
			stop()
			return ctx.Err()
		case <-grace:
			if !seenRunning {
				return nil
			}
		case ev := <-events:
			st, ok := ev.Fields["status"].(device.Status)
			if !ok {
				continue
			}
			if st.Procedure != "" && st.Procedure != "none" {
				seenRunning = true
				continue
			}
			if seenRunning {
				return nil
			}
		}
	}
}
