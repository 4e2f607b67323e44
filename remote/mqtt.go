package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/soniccontrol/sonicctl/device"
)

// Publisher pushes status and procedure events to an MQTT broker, one JSON
// message per event under <prefix>/status and <prefix>/procedure.
type Publisher struct {
	client mqtt.Client
	prefix string
	log    *log.Entry
}

// NewPublisher connects to the broker. prefix defaults to "sonicctl".
func NewPublisher(broker, prefix string) (*Publisher, error) {
	if prefix == "" {
		prefix = "sonicctl"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("sonicctl-" + uuid.New().String()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		log:    log.WithField("comp", "mqtt"),
	}, nil
}

// Run forwards bus events until ctx cancels, then disconnects.
func (p *Publisher) Run(ctx context.Context, bus *device.Bus) {
	statusEvents, cancelStatus := bus.Subscribe(device.TopicStatus, 32)
	procEvents, cancelProc := bus.Subscribe(device.TopicProcedure, 8)
	defer cancelStatus()
	defer cancelProc()
	defer p.client.Disconnect(250)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-statusEvents:
			if st, ok := ev.Fields["status"].(device.Status); ok {
				p.publish("status", st)
			}
		case ev := <-procEvents:
			p.publish("procedure", ev.Fields)
		}
	}
}

func (p *Publisher) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	tok := p.client.Publish(p.prefix+"/"+topic, 0, false, payload)
	go func() {
		if tok.Wait() && tok.Error() != nil {
			p.log.WithError(tok.Error()).Debug("publish failed")
		}
	}()
}
