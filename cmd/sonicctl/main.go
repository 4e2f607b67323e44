// sonicctl drives SonicAmp ultrasonic generators over their serial wire
// protocol: one-shot commands, scripted sequences, procedures and a small
// remote control server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniccontrol/sonicctl/device"
)

// Exit codes for scripting: transport failures and device-side rejections
// are told apart.
const (
	exitOK        = 0
	exitUsage     = 1
	exitTransport = 2
	exitInvalid   = 3
)

var (
	flagLink       string
	flagBaud       int
	flagLogLevel   string
	flagJSONLog    bool
	flagModernOnly bool
	flagBootWait   time.Duration
	flagTimeout    time.Duration
	flagChunked    bool
)

func main() {
	root := &cobra.Command{
		Use:           "sonicctl",
		Short:         "Control SonicAmp ultrasonic generators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flagLink, "link", "l", "", "device link, e.g. /dev/ttyUSB0, socket://host:port or exec:./sim")
	pf.IntVarP(&flagBaud, "baud", "b", 0, "serial baud rate (default 9600)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&flagJSONLog, "log-json", false, "log in JSON format")
	pf.BoolVar(&flagModernOnly, "modern-only", false, "skip the legacy protocol fallback")
	pf.DurationVar(&flagBootWait, "boot-wait", 0, "boot pause before legacy devices answer")
	pf.DurationVar(&flagTimeout, "timeout", 0, "per-attempt answer timeout")
	pf.BoolVar(&flagChunked, "chunked-writes", false, "split writes into 30 byte chunks (flaky USB adapters)")

	root.AddCommand(newSendCmd(), newMonitorCmd(), newScriptCmd(), newProcedureCmd(), newServeCmd(), newTranspileCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(exitCodeFor(err))
	}
}

func setupLogging() {
	if flagJSONLog {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *device.TransportError, *device.TimeoutError:
		return exitTransport
	}
	if err == device.ErrNotConnected || err == device.ErrClosed {
		return exitTransport
	}
	return exitUsage
}

func deviceConfig() device.Config {
	cfg := device.Config{
		Link:       flagLink,
		Baud:       flagBaud,
		BootWait:   flagBootWait,
		SkipLegacy: flagModernOnly,
	}
	if flagTimeout > 0 {
		cfg.Options = append(cfg.Options, device.WithTimeout(flagTimeout))
	}
	if flagChunked {
		cfg.Options = append(cfg.Options, device.WithChunkedWrites(0, 0))
	}
	return cfg
}

// connect establishes the device session for one-shot commands.
func connect(ctx context.Context) (*device.Device, error) {
	if flagLink == "" {
		return nil, errMissingLink
	}
	return device.Connect(ctx, deviceConfig())
}

var errMissingLink = &usageError{"--link is required"}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
