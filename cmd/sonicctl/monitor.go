package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soniccontrol/sonicctl/device"
)

func newMonitorCmd() *cobra.Command {
	var transducerPath string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Interactive command prompt on a connected device",
		Long: `Open an interactive prompt. Every line is sent to the device in
protocol syntax and the answer is printed; unsolicited device messages
and firmware log lines are printed as they arrive. Type "exit" or press
Ctrl-D to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			dev, err := connect(ctx)
			if err != nil {
				return err
			}
			defer dev.Disconnect()

			if transducerPath != "" {
				cfg, err := device.LoadTransducerConfig(transducerPath)
				if err != nil {
					return err
				}
				if err := cfg.Apply(ctx, dev); err != nil {
					return err
				}
			}

			info := dev.Info()
			fmt.Printf("connected: %s %s\n", info.Type, info.ProtocolVersion)

			notify, cancelNotify := dev.Bus().Subscribe(device.TopicNotify, 16)
			defer cancelNotify()
			logs, cancelLogs := dev.Bus().Subscribe(device.TopicDeviceLog, 16)
			defer cancelLogs()
			go func() {
				for {
					select {
					case ev, ok := <-notify:
						if !ok {
							return
						}
						fmt.Printf("\n<- %v\n> ", ev.Fields["message"])
					case ev, ok := <-logs:
						if !ok {
							return
						}
						fmt.Printf("\n[%v] %v\n> ", ev.Fields["level"], ev.Fields["message"])
					case <-ctx.Done():
						return
					}
				}
			}()

			in := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !in.Scan() {
					fmt.Println()
					return in.Err()
				}
				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				}
				ans, err := dev.ExecuteRaw(ctx, line)
				if err != nil {
					if !dev.Connected() {
						return err
					}
					fmt.Fprintln(os.Stderr, "error:", err)
					continue
				}
				fmt.Println(ans.Message)
				if ans.WasValidated && !ans.Valid {
					fmt.Fprintln(os.Stderr, "warning: answer did not match its declared shape")
				}
			}
		},
	}
	cmd.Flags().StringVar(&transducerPath, "transducer", "", "apply a transducer calibration file after connecting")
	return cmd
}
