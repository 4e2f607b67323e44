package procedure

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniccontrol/sonicctl/device"
	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
)

type fakeComm struct {
	mu       sync.Mutex
	requests []string
	respond  func(text string) string
	closed   bool
}

func (f *fakeComm) Send(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", device.ErrNotConnected
	}
	f.requests = append(f.requests, text)
	return f.respond(text), nil
}

func (f *fakeComm) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeComm) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeComm) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// echoFirmware answers every command the way the real firmware echoes its
// arguments, enough for validators to pass.
func echoFirmware(text string) string {
	switch text {
	case "!ON":
		return "ON"
	case "!OFF":
		return "OFF"
	case "!ramp", "!stop":
		return "none"
	default:
		if i := strings.IndexByte(text, '='); i >= 0 {
			return text[i+1:]
		}
		return ""
	}
}

func testDevice(t *testing.T, respond func(string) string) (*device.Device, *fakeComm) {
	t.Helper()
	proto, err := registry.Resolve(p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	require.NoError(t, err)
	fc := &fakeComm{respond: respond}
	dev := device.New(fc, proto, device.NewBus(), device.Info{Type: p.DeviceMvpWorker})
	return dev, fc
}

func waitStopped(t *testing.T, events <-chan device.Event) device.Event {
	t.Helper()
	for {
		select {
		case ev := <-events:
			if ev.Fields["state"] == "stopped" {
				return ev
			}
		case <-time.After(3 * time.Second):
			t.Fatal("procedure never reported stopped")
		}
	}
}

func TestControllerRunsLocalRamp(t *testing.T) {
	dev, fc := testDevice(t, echoFirmware)
	ctrl := NewController(dev)
	events, cancel := dev.Bus().Subscribe(device.TopicProcedure, 8)
	defer cancel()

	proc := &LocalRamp{Args: RampArgs{
		FStart: 100000, FStop: 100200, FStep: 100,
		HoldOn: time.Millisecond, HoldOff: time.Millisecond,
	}}
	require.NoError(t, ctrl.Start(proc))

	name, running := ctrl.Running()
	assert.True(t, running)
	assert.Equal(t, "ramp", name)

	ev := waitStopped(t, events)
	assert.NotContains(t, ev.Fields, "error")
	_, running = ctrl.Running()
	assert.False(t, running)

	sent := fc.sent()
	assert.Contains(t, sent, "!f=100000")
	assert.Contains(t, sent, "!f=100100")
	assert.Contains(t, sent, "!f=100200")
	// Safe stop: the last command switches the signal off.
	assert.Equal(t, "!OFF", sent[len(sent)-1])
}

func TestControllerRejectsConcurrentStart(t *testing.T) {
	dev, _ := testDevice(t, echoFirmware)
	ctrl := NewController(dev)
	defer ctrl.Stop()

	proc := &LocalRamp{Args: RampArgs{
		FStart: 100000, FStop: 2000000, FStep: 100,
		HoldOn: 10 * time.Millisecond,
	}}
	require.NoError(t, ctrl.Start(proc))
	assert.ErrorIs(t, ctrl.Start(&LocalRamp{Args: proc.Args}), ErrBusy)
}

func TestControllerStopSwitchesSignalOff(t *testing.T) {
	dev, fc := testDevice(t, echoFirmware)
	ctrl := NewController(dev)
	events, cancel := dev.Bus().Subscribe(device.TopicProcedure, 8)
	defer cancel()

	proc := &LocalRamp{Args: RampArgs{
		FStart: 100000, FStop: 5000000, FStep: 100,
		HoldOn: 20 * time.Millisecond,
	}}
	require.NoError(t, ctrl.Start(proc))
	time.Sleep(50 * time.Millisecond)
	ctrl.Stop()

	waitStopped(t, events)
	sent := fc.sent()
	require.NotEmpty(t, sent)
	assert.Equal(t, "!OFF", sent[len(sent)-1])

	// The controller is free again.
	_, running := ctrl.Running()
	assert.False(t, running)
}

func TestControllerReportsFailure(t *testing.T) {
	dev, _ := testDevice(t, func(text string) string {
		if text == "!OFF" {
			return "OFF"
		}
		return "garbage the validator rejects"
	})
	ctrl := NewController(dev)
	events, cancel := dev.Bus().Subscribe(device.TopicProcedure, 8)
	defer cancel()

	// Step 0 already fails: the answer never validates, so the status stays
	// unknown and the remote run aborts on the first register write.
	require.NoError(t, ctrl.Start(&RemoteRamp{Args: RampArgs{
		FStart: 100000, FStop: 101000, FStep: 100,
	}}))

	ev := waitStopped(t, events)
	assert.Contains(t, ev.Fields, "error")
}

func TestRampValues(t *testing.T) {
	a := RampArgs{FStart: 100, FStop: 400, FStep: 100}
	require.NoError(t, a.normalize())
	assert.Equal(t, []int64{100, 200, 300, 400}, a.values())

	down := RampArgs{FStart: 400, FStop: 100, FStep: -100}
	require.NoError(t, down.normalize())
	assert.Equal(t, []int64{400, 300, 200, 100}, down.values())

	zero := RampArgs{FStart: 100, FStop: 200}
	assert.Error(t, zero.normalize())
}

func TestRemoteRampConfiguresRegisters(t *testing.T) {
	dev, fc := testDevice(t, echoFirmware)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- (&RemoteRamp{Args: RampArgs{
			FStart: 100000, FStop: 101000, FStep: 100,
			HoldOn: 100 * time.Millisecond, HoldOff: 100 * time.Millisecond,
		}}).Run(ctx, dev)
	}()

	// The firmware never reports the procedure running, so cancel ends the
	// wait; the stop command must still go out.
	time.Sleep(100 * time.Millisecond)
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	sent := fc.sent()
	assert.Contains(t, sent, "!ramp_f_start=100000")
	assert.Contains(t, sent, "!ramp_f_stop=101000")
	assert.Contains(t, sent, "!ramp_f_step=100")
	assert.Contains(t, sent, "!ramp_t_on=100")
	assert.Contains(t, sent, "!ramp_t_off=100")
	assert.Contains(t, sent, "!ramp")
	assert.Equal(t, "!stop", sent[len(sent)-1])
}
