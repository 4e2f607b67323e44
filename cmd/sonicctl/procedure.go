package main

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
	"github.com/soniccontrol/sonicctl/remote"
)

func newProcedureCmd() *cobra.Command {
	var argsJSON string
	var updateInterval = "250ms"
	cmd := &cobra.Command{
		Use:   "run-procedure <name>",
		Short: "Run a procedure (ramp, ramp_remote, scan, tune, wipe, duty_cycle)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := buildNamedProcedure(args[0], argsJSON)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			dev, err := connect(ctx)
			if err != nil {
				return err
			}
			defer dev.Disconnect()

			// Remote procedures observe completion through status polls.
			upd := device.NewUpdater(dev, mustDuration(updateInterval))
			upd.Start(ctx)
			defer upd.Stop()

			ctrl := procedure.NewController(dev)
			events, cancel := dev.Bus().Subscribe(device.TopicProcedure, 4)
			defer cancel()
			if err := ctrl.Start(proc); err != nil {
				return err
			}
			log.WithField("procedure", proc.Name()).Info("procedure started")
			for {
				select {
				case <-ctx.Done():
					ctrl.Stop()
					return ctx.Err()
				case ev := <-events:
					if ev.Fields["state"] != "stopped" {
						continue
					}
					if msg, ok := ev.Fields["error"].(string); ok {
						return &procedureError{msg}
					}
					log.Info("procedure finished")
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "", "procedure arguments as JSON")
	cmd.Flags().StringVar(&updateInterval, "update-interval", "250ms", "status poll interval")
	return cmd
}

type procedureError struct{ msg string }

func (e *procedureError) Error() string { return "procedure failed: " + e.msg }

func buildNamedProcedure(name, argsJSON string) (procedure.Procedure, error) {
	return remote.BuildProcedure(name, strings.NewReader(argsJSON))
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}
