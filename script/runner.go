package script

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
)

// Runner executes a parsed script against one device. Ramp statements go
// through the procedure controller so its one-at-a-time and safe-stop rules
// apply to scripted sweeps too.
type Runner struct {
	dev  *device.Device
	ctrl *procedure.Controller
	log  *log.Entry
}

func NewRunner(dev *device.Device, ctrl *procedure.Controller) *Runner {
	return &Runner{
		dev:  dev,
		ctrl: ctrl,
		log:  log.WithField("comp", "script"),
	}
}

type loopFrame struct {
	start     int
	remaining int64
	forever   bool
}

// Run executes the script to completion or until ctx cancels. The signal is
// always switched off on the way out.
func (r *Runner) Run(ctx context.Context, s *Script) (err error) {
	defer func() {
		offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, offErr := r.dev.SetSignalOff(offCtx); offErr != nil && err == nil {
			err = offErr
		}
	}()

	var loops []loopFrame
	for pc := 0; pc < len(s.Steps); pc++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := s.Steps[pc]
		r.log.WithFields(log.Fields{"line": step.Line, "op": step.Op}).Debug("step")
		switch step.Op {
		case OpOn:
			if err := r.exec(ctx, step, func() error { _, e := r.dev.SetSignalOn(ctx); return e }); err != nil {
				return err
			}
		case OpOff:
			if err := r.exec(ctx, step, func() error { _, e := r.dev.SetSignalOff(ctx); return e }); err != nil {
				return err
			}
		case OpFrequency:
			if err := r.exec(ctx, step, func() error { _, e := r.dev.SetFrequency(ctx, step.Value); return e }); err != nil {
				return err
			}
		case OpGain:
			if err := r.exec(ctx, step, func() error { _, e := r.dev.SetGain(ctx, step.Value); return e }); err != nil {
				return err
			}
		case OpRaw:
			if err := r.exec(ctx, step, func() error { _, e := r.dev.ExecuteRaw(ctx, step.Text); return e }); err != nil {
				return err
			}
		case OpHold:
			select {
			case <-time.After(step.Dur):
			case <-ctx.Done():
				return ctx.Err()
			}
		case OpRamp:
			if err := r.runRamp(ctx, step); err != nil {
				return err
			}
		case OpLoopStart:
			loops = append(loops, loopFrame{start: pc, remaining: step.Value, forever: step.Value == 0})
		case OpLoopEnd:
			top := &loops[len(loops)-1]
			if top.forever {
				pc = top.start
				continue
			}
			top.remaining--
			if top.remaining > 0 {
				pc = top.start
			} else {
				loops = loops[:len(loops)-1]
			}
		}
	}
	return nil
}

func (r *Runner) exec(ctx context.Context, step Step, f func() error) error {
	if err := f(); err != nil {
		return fmt.Errorf("line %d: %w", step.Line, err)
	}
	return nil
}

// runRamp hands the sweep to the controller and waits for it to stop.
func (r *Runner) runRamp(ctx context.Context, step Step) error {
	events, cancel := r.dev.Bus().Subscribe(device.TopicProcedure, 4)
	defer cancel()

	ramp := &procedure.LocalRamp{Args: procedure.RampArgs{
		FStart:  step.Ramp.FStart,
		FStop:   step.Ramp.FStop,
		FStep:   step.Ramp.FStep,
		HoldOn:  step.Ramp.HoldOn,
		HoldOff: step.Ramp.HoldOff,
	}}
	if err := r.ctrl.Start(ramp); err != nil {
		return fmt.Errorf("line %d: %w", step.Line, err)
	}
	for {
		select {
		case <-ctx.Done():
			r.ctrl.Stop()
			return ctx.Err()
		case ev := <-events:
			if ev.Fields["state"] != "stopped" {
				continue
			}
			if msg, ok := ev.Fields["error"].(string); ok {
				return fmt.Errorf("line %d: ramp failed: %s", step.Line, msg)
			}
			return nil
		}
	}
}
