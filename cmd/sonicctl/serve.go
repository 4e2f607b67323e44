package main

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
	"github.com/soniccontrol/sonicctl/remote"
)

func newServeCmd() *cobra.Command {
	var (
		httpAddr       string
		mqttBroker     string
		mqttPrefix     string
		transducerPath string
		updateInterval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stay connected and expose the device over HTTP and MQTT",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			dev, err := connect(ctx)
			if err != nil {
				return err
			}
			defer dev.Disconnect()
			info := dev.Info()
			log.WithFields(log.Fields{
				"type":     info.Type,
				"protocol": info.ProtocolVersion,
				"firmware": info.FirmwareInfo,
			}).Info("device connected")

			if transducerPath != "" {
				cfg, err := device.LoadTransducerConfig(transducerPath)
				if err != nil {
					return err
				}
				if err := cfg.Apply(ctx, dev); err != nil {
					return err
				}
			}

			upd := device.NewUpdater(dev, updateInterval)
			upd.Start(ctx)
			defer upd.Stop()

			go remote.ExportStatus(ctx, dev.Bus())
			go logDeviceEvents(ctx, dev.Bus())

			if mqttBroker != "" {
				pub, err := remote.NewPublisher(mqttBroker, mqttPrefix)
				if err != nil {
					return err
				}
				go pub.Run(ctx, dev.Bus())
			}

			ctrl := procedure.NewController(dev)
			defer ctrl.Stop()
			srv := &http.Server{
				Addr:    httpAddr,
				Handler: remote.NewServer(dev, ctrl).Router(),
			}
			go func() {
				<-ctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				srv.Shutdown(shutCtx)
			}()
			go watchDisconnect(ctx, dev, stop)

			log.WithField("addr", httpAddr).Info("http server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", ":8012", "http listen address")
	cmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "mqtt broker url, e.g. tcp://localhost:1883")
	cmd.Flags().StringVar(&mqttPrefix, "mqtt-prefix", "sonicctl", "mqtt topic prefix")
	cmd.Flags().StringVar(&transducerPath, "transducer", "", "apply a transducer calibration file after connecting")
	cmd.Flags().DurationVar(&updateInterval, "update-interval", 0, "status poll interval (0 picks the transport default)")
	return cmd
}

// watchDisconnect ends the serve loop when the transport dies.
func watchDisconnect(ctx context.Context, dev *device.Device, stop context.CancelFunc) {
	events, cancel := dev.Bus().Subscribe(device.TopicDisconnected, 1)
	defer cancel()
	select {
	case <-ctx.Done():
	case <-events:
		log.Warn("device disconnected, shutting down")
		stop()
	}
}

// logDeviceEvents forwards device-side log lines and notifications into the
// host log.
func logDeviceEvents(ctx context.Context, bus *device.Bus) {
	logs, cancelLogs := bus.Subscribe(device.TopicDeviceLog, 32)
	notes, cancelNotes := bus.Subscribe(device.TopicNotify, 32)
	defer cancelLogs()
	defer cancelNotes()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-logs:
			entry := log.WithField("origin", "device")
			msg, _ := ev.Fields["message"].(string)
			switch ev.Fields["level"] {
			case "error":
				entry.Error(msg)
			case "warn", "warning":
				entry.Warn(msg)
			case "debug":
				entry.Debug(msg)
			default:
				entry.Info(msg)
			}
		case ev := <-notes:
			log.WithField("origin", "device").WithField("notify", ev.Fields["message"]).Info("device notification")
		}
	}
}
