package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniccontrol/sonicctl/procedure"
	"github.com/soniccontrol/sonicctl/script"
)

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-script <file>",
		Short: "Run an automation script against the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := script.Parse(string(text))
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

			ctrl := procedure.NewController(dev)
			runner := script.NewRunner(dev, ctrl)
			log.WithFields(log.Fields{"file": args[0], "steps": len(s.Steps)}).Info("running script")
			return runner.Run(ctx, s)
		},
	}
}
