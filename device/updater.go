package device

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Updater polls the device's status command and keeps the status snapshot
// fresh. Every poll that changes the snapshot is published on the bus by the
// device itself; the updater only drives the cadence.
type Updater struct {
	dev      *Device
	interval time.Duration
	log      *log.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewUpdater creates a poller. interval <= 0 selects the default for the
// device's transport: legacy devices answer slowly and get 1 s, framed ones
// are polled tightly.
func NewUpdater(dev *Device, interval time.Duration) *Updater {
	if interval <= 0 {
		if _, legacy := dev.comm.(*LegacyCommunicator); legacy {
			interval = time.Second
		} else {
			interval = 50 * time.Millisecond
		}
	}
	return &Updater{
		dev:      dev,
		interval: interval,
		log:      log.WithField("comp", "updater"),
	}
}

// Start launches the poll loop. Starting a running updater is a no-op.
func (u *Updater) Start(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})
	go u.loop(ctx, u.done)
}

// Stop halts polling and waits for the loop to exit.
func (u *Updater) Stop() {
	u.mu.Lock()
	cancel, done := u.cancel, u.done
	u.cancel, u.done = nil, nil
	u.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (u *Updater) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		if _, err := u.dev.GetUpdate(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			u.log.WithError(err).Warn("status poll failed")
			if !u.dev.Connected() {
				return
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
