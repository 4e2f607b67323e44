package remote

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soniccontrol/sonicctl/device"
)

var (
	commandDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sonicctl",
		Name:      "command_duration_seconds",
		Help:      "Round trip time of remote commands.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	commandResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sonicctl",
		Name:      "commands_total",
		Help:      "Remote commands by outcome.",
	}, []string{"outcome"})
	frequencyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sonicctl",
		Name:      "frequency_hertz",
		Help:      "Last reported output frequency.",
	})
	gainGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sonicctl",
		Name:      "gain_percent",
		Help:      "Last reported gain.",
	})
	temperatureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sonicctl",
		Name:      "temperature_celsius",
		Help:      "Last reported transducer temperature.",
	})
	signalGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sonicctl",
		Name:      "signal_on",
		Help:      "Whether the output signal is on.",
	})
	deviceErrorGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sonicctl",
		Name:      "device_error_code",
		Help:      "Last reported device error code.",
	})
)

func init() {
	prometheus.MustRegister(commandDuration, commandResults,
		frequencyGauge, gainGauge, temperatureGauge, signalGauge, deviceErrorGauge)
}

func observeCommand(d time.Duration, ok bool) {
	commandDuration.Observe(d.Seconds())
	outcome := "ok"
	if !ok {
		outcome = "invalid"
	}
	commandResults.WithLabelValues(outcome).Inc()
}

// ExportStatus mirrors status events into the Prometheus gauges until ctx
// cancels.
func ExportStatus(ctx context.Context, bus *device.Bus) {
	events, cancel := bus.Subscribe(device.TopicStatus, 32)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			st, isStatus := ev.Fields["status"].(device.Status)
			if !isStatus {
				continue
			}
			frequencyGauge.Set(float64(st.Frequency))
			gainGauge.Set(float64(st.Gain))
			temperatureGauge.Set(st.TempCelsius())
			deviceErrorGauge.Set(float64(st.ErrorCode))
			if st.Signal {
				signalGauge.Set(1)
			} else {
				signalGauge.Set(0)
			}
		}
	}
}
