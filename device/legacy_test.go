package device

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// legacyFirmware consumes the session marker and then answers each request.
func legacyFirmware(t *testing.T, conn net.Conn, respond func(line string) []string) {
	t.Helper()
	go func() {
		sc := bufio.NewScanner(conn)
		if !sc.Scan() {
			return
		}
		assert.Equal(t, "!SERIAL", sc.Text())
		for sc.Scan() {
			for _, out := range respond(sc.Text()) {
				if _, err := conn.Write([]byte(out + "\n")); err != nil {
					return
				}
			}
		}
	}()
}

func newLegacyPair(t *testing.T, respond func(string) []string, opts ...Option) *LegacyCommunicator {
	t.Helper()
	host, dev := net.Pipe()
	legacyFirmware(t, dev, respond)
	c, err := NewLegacy(context.Background(), host, NewBus(), 0, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLegacySingleLine(t *testing.T) {
	c := newLegacyPair(t, func(line string) []string {
		if line == "?freq" {
			return []string{"200000"}
		}
		return []string{"unknown"}
	}, WithTimeout(500*time.Millisecond), WithIdleGap(30*time.Millisecond))

	got, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)
	assert.Equal(t, "200000", got)
}

func TestLegacyJoinsAnswerBlock(t *testing.T) {
	c := newLegacyPair(t, func(line string) []string {
		return []string{"sonic crystal", "hw 2.0", "fw 1.3"}
	}, WithTimeout(500*time.Millisecond), WithIdleGap(30*time.Millisecond))

	got, err := c.Send(context.Background(), "?info")
	require.NoError(t, err)
	assert.Equal(t, "sonic crystal\nhw 2.0\nfw 1.3", got)
}

func TestLegacyTimeoutKeepsConnection(t *testing.T) {
	calls := 0
	c := newLegacyPair(t, func(line string) []string {
		calls++
		if calls <= 2 {
			return nil
		}
		return []string{"200000"}
	}, WithTimeout(30*time.Millisecond), WithRetries(2), WithIdleGap(20*time.Millisecond))

	_, err := c.Send(context.Background(), "?freq")
	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.True(t, c.Connected())

	got, err := c.Send(context.Background(), "?freq")
	require.NoError(t, err)
	assert.Equal(t, "200000", got)
}

func TestLegacyBootWaitHonorsContext(t *testing.T) {
	host, dev := net.Pipe()
	go func() {
		sc := bufio.NewScanner(dev)
		sc.Scan()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewLegacy(ctx, host, NewBus(), 10*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLegacyDrainsGreeting(t *testing.T) {
	host, dev := net.Pipe()
	go func() {
		sc := bufio.NewScanner(dev)
		sc.Scan() // !SERIAL
		dev.Write([]byte("booting...\nready\n"))
		for sc.Scan() {
			if sc.Text() == "?gain" {
				dev.Write([]byte("100\n"))
			}
		}
	}()
	c, err := NewLegacy(context.Background(), host, NewBus(), 0,
		WithTimeout(500*time.Millisecond), WithIdleGap(30*time.Millisecond))
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Send(context.Background(), "?gain")
	require.NoError(t, err)
	assert.Equal(t, "100", got)
}
