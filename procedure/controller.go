package procedure

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/soniccontrol/sonicctl/device"
)

// ErrBusy is returned when a procedure is started while another one runs.
var ErrBusy = errors.New("a procedure is already running")

// Controller runs at most one procedure at a time and guarantees that the
// signal is switched off before a procedure is reported as stopped, no
// matter how it ended.
type Controller struct {
	dev *device.Device
	log *log.Entry

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewController(dev *device.Device) *Controller {
	return &Controller{
		dev: dev,
		log: log.WithField("comp", "procedures"),
	}
}

// Running reports the name of the active procedure, if any.
func (c *Controller) Running() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.current != ""
}

// Start launches proc in the background. It fails fast with ErrBusy if a
// procedure is already active.
func (c *Controller) Start(proc Procedure) error {
	c.mu.Lock()
	if c.current != "" {
		c.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.current = proc.Name()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.dev.Bus().Publish(device.TopicProcedure, map[string]any{
		"name": proc.Name(), "state": "running",
	})
	go c.run(ctx, proc, done)
	return nil
}

func (c *Controller) run(ctx context.Context, proc Procedure, done chan struct{}) {
	defer close(done)
	err := proc.Run(ctx, c.dev)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.log.WithError(err).WithField("procedure", proc.Name()).Error("procedure failed")
	}

	// Safe stop: the signal goes off before anyone hears "stopped", even
	// when the run context is already cancelled.
	offCtx, cancelOff := context.WithTimeout(context.Background(), 5*time.Second)
	if _, offErr := c.dev.SetSignalOff(offCtx); offErr != nil {
		c.log.WithError(offErr).Warn("could not switch signal off after procedure")
	}
	cancelOff()

	c.mu.Lock()
	c.current = ""
	c.cancel = nil
	c.mu.Unlock()

	fields := map[string]any{"name": proc.Name(), "state": "stopped"}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.dev.Bus().Publish(device.TopicProcedure, fields)
}

// Stop cancels the active procedure and waits for its safe stop to finish.
// Stopping an idle controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
