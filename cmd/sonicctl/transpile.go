package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
	"github.com/soniccontrol/sonicctl/transpile"
)

func newTranspileCmd() *cobra.Command {
	var (
		out     string
		devices []string
		version string
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "transpile",
		Short: "Generate the C protocol tables for firmware builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ver, err := p.ParseVersion(version)
			if err != nil {
				return err
			}
			tr := transpile.New()
			for _, d := range devices {
				dt, err := p.ParseDeviceType(d)
				if err != nil {
					return err
				}
				pt := p.ProtocolType{Version: ver, Device: dt, IsRelease: !debug}
				if err := tr.AddTarget(pt); err != nil {
					return fmt.Errorf("%s: %w", pt, err)
				}
			}
			header, err := tr.Generate()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				fmt.Print(header)
				return nil
			}
			return os.WriteFile(out, []byte(header), 0o644)
		},
	}
	latest, _ := registry.Latest(p.DeviceMvpWorker)
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringSliceVarP(&devices, "device", "d", []string{"mvp_worker"}, "device types to include")
	cmd.Flags().StringVarP(&version, "protocol", "p", latest.String(), "protocol version")
	cmd.Flags().BoolVar(&debug, "debug", false, "include debug-only commands")
	return cmd
}
