package device

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFirmware answers line by line on the device end of a pipe. respond
// receives the full frame (id included) and returns the lines to print back.
func fakeFirmware(conn net.Conn, respond func(frame string) []string) {
	go func() {
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			for _, out := range respond(sc.Text()) {
				if _, err := conn.Write([]byte(out + "\n")); err != nil {
					return
				}
			}
		}
	}()
}

// frameID extracts the message id prefix of an outgoing frame.
func frameID(frame string) string {
	if i := strings.Index(frame, "#"); i > 0 {
		return frame[:i]
	}
	return ""
}

func TestSerialSendMatchesMessageID(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(frame string) []string {
		assert.True(t, strings.HasSuffix(frame, "#?freq"))
		return []string{frameID(frame) + "#200000"}
	})
	c := NewSerial(host, NewBus(), WithIdleGap(30*time.Millisecond))
	defer c.Close()

	got, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)
	assert.Equal(t, "200000", got)
	assert.True(t, c.Connected())
}

func TestSerialMultiLineAnswer(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(frame string) []string {
		id := frameID(frame)
		return []string{id + "#first", id + "#second"}
	})
	c := NewSerial(host, NewBus(), WithIdleGap(30*time.Millisecond))
	defer c.Close()

	got, err := c.Send(context.Background(), "?help")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)
}

func TestSerialContinuationLines(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(frame string) []string {
		// The second line carries no frame of its own.
		return []string{frameID(frame) + "#head", "tail"}
	})
	c := NewSerial(host, NewBus(), WithIdleGap(30*time.Millisecond))
	defer c.Close()

	got, err := c.Send(context.Background(), "?help")
	require.NoError(t, err)
	assert.Equal(t, "head\ntail", got)
}

func TestSerialStaleAnswerDiscarded(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(frame string) []string {
		return []string{"65000#stale", "", frameID(frame) + "#fresh"}
	})
	c := NewSerial(host, NewBus(), WithIdleGap(20*time.Millisecond))
	defer c.Close()

	got, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestSerialRetryAfterSilentAttempt(t *testing.T) {
	host, dev := net.Pipe()
	var mu sync.Mutex
	calls := 0
	fakeFirmware(dev, func(frame string) []string {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil // swallow the first attempt
		}
		return []string{frameID(frame) + "#42"}
	})
	c := NewSerial(host, NewBus(),
		WithTimeout(80*time.Millisecond),
		WithRetries(3),
		WithIdleGap(20*time.Millisecond))
	defer c.Close()

	got, err := c.Send(context.Background(), "?gain")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()
}

func TestSerialTimeoutKeepsConnection(t *testing.T) {
	host, dev := net.Pipe()
	var mu sync.Mutex
	calls := 0
	fakeFirmware(dev, func(frame string) []string {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= 2 {
			return nil // swallow every attempt of the first request
		}
		return []string{frameID(frame) + "#200000"}
	})
	bus := NewBus()
	events, cancel := bus.Subscribe(TopicDisconnected, 1)
	defer cancel()
	c := NewSerial(host, bus, WithTimeout(60*time.Millisecond), WithRetries(2), WithIdleGap(15*time.Millisecond))
	defer c.Close()

	_, err := c.Send(context.Background(), "?freq")
	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Attempts)
	assert.True(t, c.Connected())

	select {
	case <-events:
		t.Fatal("timeout must not emit a disconnect event")
	default:
	}

	got, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)
	assert.Equal(t, "200000", got)
}

func TestSerialDeviceLogRouted(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(frame string) []string {
		return []string{"LOG [WARN] transducer overload", frameID(frame) + "#ok"}
	})
	bus := NewBus()
	logs, cancel := bus.Subscribe(TopicDeviceLog, 4)
	defer cancel()
	c := NewSerial(host, bus, WithIdleGap(30*time.Millisecond))
	defer c.Close()

	_, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)

	select {
	case ev := <-logs:
		assert.Equal(t, "warn", ev.Fields["level"])
		assert.Equal(t, "transducer overload", ev.Fields["message"])
	case <-time.After(time.Second):
		t.Fatal("no device log event")
	}
}

func TestSerialUnsolicitedLineNotifies(t *testing.T) {
	host, dev := net.Pipe()
	bus := NewBus()
	notes, cancel := bus.Subscribe(TopicNotify, 4)
	defer cancel()
	c := NewSerial(host, bus)
	defer c.Close()

	_, err := dev.Write([]byte("procedure finished\n"))
	require.NoError(t, err)

	select {
	case ev := <-notes:
		assert.Equal(t, "procedure finished", ev.Fields["message"])
	case <-time.After(time.Second):
		t.Fatal("no notify event")
	}
}

func TestSerialSendAfterClose(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(string) []string { return nil })
	c := NewSerial(host, NewBus())
	require.NoError(t, c.Close())

	_, err := c.Send(context.Background(), "?freq")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSerialContextCancel(t *testing.T) {
	host, dev := net.Pipe()
	fakeFirmware(dev, func(string) []string { return nil })
	c := NewSerial(host, NewBus(), WithTimeout(5*time.Second))
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.Send(ctx, "?freq")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNextIDSkipsZero(t *testing.T) {
	c := &SerialCommunicator{msgID: 65535}
	assert.Equal(t, uint16(1), c.nextID())
	assert.Equal(t, uint16(2), c.nextID())
}

func TestSplitLogLine(t *testing.T) {
	lvl, msg, ok := splitLogLine("LOG [ERROR] amp fault")
	require.True(t, ok)
	assert.Equal(t, "error", lvl)
	assert.Equal(t, "amp fault", msg)

	lvl, msg, ok = splitLogLine("LOG: booting")
	require.True(t, ok)
	assert.Equal(t, "info", lvl)
	assert.Equal(t, "booting", msg)

	_, _, ok = splitLogLine("1#200000")
	assert.False(t, ok)
}
