package script

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniccontrol/sonicctl/device"
	"github.com/soniccontrol/sonicctl/procedure"
	p "github.com/soniccontrol/sonicctl/protocol"
	"github.com/soniccontrol/sonicctl/protocol/registry"
)

type fakeComm struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeComm) Send(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, text)
	switch text {
	case "!ON":
		return "ON", nil
	case "!OFF":
		return "OFF", nil
	}
	if i := strings.IndexByte(text, '='); i >= 0 {
		return text[i+1:], nil
	}
	return "", nil
}

func (f *fakeComm) Connected() bool { return true }
func (f *fakeComm) Close() error    { return nil }

func (f *fakeComm) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func testRunner(t *testing.T) (*Runner, *fakeComm) {
	t.Helper()
	proto, err := registry.Resolve(p.ProtocolType{Version: p.V(1, 0, 0), Device: p.DeviceMvpWorker, IsRelease: true})
	require.NoError(t, err)
	fc := &fakeComm{}
	dev := device.New(fc, proto, device.NewBus(), device.Info{Type: p.DeviceMvpWorker})
	return NewRunner(dev, procedure.NewController(dev)), fc
}

func TestRunnerExecutesSteps(t *testing.T) {
	r, fc := testRunner(t)
	s, err := Parse("frequency 200000\ngain 80\non\nhold 1\noff")
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), s))
	sent := fc.sent()
	assert.Equal(t, "!f=200000", sent[0])
	assert.Equal(t, "!g=80", sent[1])
	assert.Equal(t, "!ON", sent[2])
	assert.Equal(t, "!OFF", sent[3])
	// The deferred safety off always runs last.
	assert.Equal(t, "!OFF", sent[len(sent)-1])
}

func TestRunnerLoops(t *testing.T) {
	r, fc := testRunner(t)
	s, err := Parse("startloop 3\ngain 50\nendloop")
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), s))
	count := 0
	for _, req := range fc.sent() {
		if req == "!g=50" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestRunnerForeverLoopCancels(t *testing.T) {
	r, _ := testRunner(t)
	s, err := Parse("startloop\nhold 5\nendloop")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err = r.Run(ctx, s)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunnerRampViaController(t *testing.T) {
	r, fc := testRunner(t)
	s, err := Parse("ramp 100000 100200 100 1 1")
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), s))
	sent := fc.sent()
	assert.Contains(t, sent, "!f=100000")
	assert.Contains(t, sent, "!f=100200")
	assert.Equal(t, "!OFF", sent[len(sent)-1])
}

func TestRunnerReportsFailingLine(t *testing.T) {
	r, _ := testRunner(t)
	// Gain outside the worker's limit fails serialization.
	s, err := Parse("on\ngain 9999")
	require.NoError(t, err)

	err = r.Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
