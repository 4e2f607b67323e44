package device

import (
	"sync"
	"time"
)

// Event topics published on the device bus.
const (
	TopicStatus       = "status"
	TopicDeviceLog    = "device_log"
	TopicNotify       = "notify"
	TopicDisconnected = "disconnected"
	TopicProcedure    = "procedure"
)

// Event is one occurrence on the bus.
type Event struct {
	Topic  string
	At     time.Time
	Fields map[string]any
}

// Bus is a small in-process publish/subscribe hub. Publishing never blocks;
// events are dropped for subscribers that cannot keep up.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]chan Event{}}
}

// Subscribe returns a channel receiving events for topic and a cancel
// function that removes the subscription and closes the channel.
func (b *Bus) Subscribe(topic string, buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, c := range list {
			if c == ch {
				b.subs[topic] = append(list[:i], list[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(topic string, fields map[string]any) {
	ev := Event{Topic: topic, At: time.Now(), Fields: fields}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
