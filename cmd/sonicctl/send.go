package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/soniccontrol/sonicctl/protocol"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "send <command text>",
		Short: "Send one command and print the answer",
		Long: `Send one command in protocol syntax, e.g. "?freq" or "!f=200000".
The answer is validated against the device's resolved protocol; the exit
code is 3 when the answer does not match its declared shape.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			dev, err := connect(ctx)
			if err != nil {
				return err
			}
			defer dev.Disconnect()

			ans, err := dev.ExecuteRaw(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(ans.Message)
			if verbose && len(ans.Fields) > 0 {
				names := make([]string, 0, len(ans.Fields))
				for n := range ans.Fields {
					names = append(names, string(n))
				}
				sort.Strings(names)
				for _, n := range names {
					fmt.Printf("  %s = %v\n", n, ans.Fields[protocol.FieldName(n)])
				}
			}
			if ans.WasValidated && !ans.Valid {
				os.Exit(exitInvalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "fields", "f", false, "print the parsed answer fields")
	return cmd
}
