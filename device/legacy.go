package device

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Legacy firmwares carry no message ids and no response framing at all. The
// only structure is time: everything the device prints until the line flow
// pauses belongs to the last request.
type LegacyCommunicator struct {
	opts options
	log  *log.Entry
	bus  *Bus

	conn io.ReadWriteCloser

	requests chan *request
	rawLines chan string
	done     chan struct{}

	closeOnce sync.Once
	connected atomic.Bool
}

// LegacyBootWait is how long a legacy device needs after the serial session
// marker before it accepts commands. Crystal units reboot on port open and
// are deaf for the whole boot.
const LegacyBootWait = 10 * time.Second

// NewLegacy starts a legacy session: it announces serial control with the
// "!SERIAL" marker, waits out the boot pause and drains the greeting the
// device prints.
func NewLegacy(ctx context.Context, conn io.ReadWriteCloser, bus *Bus, bootWait time.Duration, opts ...Option) (*LegacyCommunicator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &LegacyCommunicator{
		opts:     o,
		log:      log.WithField("comp", "legacy"),
		bus:      bus,
		conn:     conn,
		requests: make(chan *request, o.queueSize),
		rawLines: make(chan string, 64),
		done:     make(chan struct{}),
	}
	c.connected.Store(true)
	go c.readLoop()
	if _, err := conn.Write([]byte("!SERIAL\n")); err != nil {
		c.shutdown(&TransportError{Op: "write", Err: err})
		return nil, &TransportError{Op: "write", Err: err}
	}
	if bootWait > 0 {
		select {
		case <-time.After(bootWait):
		case <-ctx.Done():
			c.shutdown(nil)
			return nil, ctx.Err()
		}
	}
	c.drain(200 * time.Millisecond)
	go c.workLoop()
	return c, nil
}

func (c *LegacyCommunicator) Connected() bool { return c.connected.Load() }

func (c *LegacyCommunicator) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *LegacyCommunicator) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.done)
		c.conn.Close()
		if cause != nil {
			c.log.WithError(cause).Warn("connection lost")
		}
		c.bus.Publish(TopicDisconnected, map[string]any{"error": cause})
	})
}

func (c *LegacyCommunicator) readLoop() {
	sc := bufio.NewScanner(c.conn)
	sc.Buffer(make([]byte, 4096), 64*1024)
	for sc.Scan() {
		select {
		case c.rawLines <- strings.TrimRight(sc.Text(), "\r"):
		case <-c.done:
			return
		}
	}
	close(c.rawLines)
	c.shutdown(&TransportError{Op: "read", Err: firstErr(sc.Err(), io.EOF)})
}

// drain discards device output until it pauses for the given gap.
func (c *LegacyCommunicator) drain(gap time.Duration) {
	for {
		select {
		case <-c.rawLines:
		case <-time.After(gap):
			return
		case <-c.done:
			return
		}
	}
}

func (c *LegacyCommunicator) Send(ctx context.Context, text string) (string, error) {
	if !c.Connected() {
		return "", ErrNotConnected
	}
	req := &request{ctx: ctx, text: strings.TrimSpace(text), resp: make(chan result, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	}
	select {
	case r := <-req.resp:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	}
}

func (c *LegacyCommunicator) workLoop() {
	for {
		select {
		case <-c.done:
			return
		case req := <-c.requests:
			c.serve(req)
		}
	}
}

// serve writes the request and collects every line until the idle gap. The
// first line has the whole per-attempt timeout to show up; once something
// arrived, only the gap applies.
func (c *LegacyCommunicator) serve(req *request) {
	if err := req.ctx.Err(); err != nil {
		req.resp <- result{err: err}
		return
	}
	for attempt := 1; attempt <= c.opts.retries; attempt++ {
		r, retryable := c.attempt(req)
		if !retryable {
			req.resp <- r
			if terr, ok := r.err.(*TransportError); ok {
				c.shutdown(terr)
			}
			return
		}
		c.log.WithFields(log.Fields{"attempt": attempt}).Warn("answer timeout")
	}
	// Timeouts are recoverable; only transport errors tear the
	// connection down.
	req.resp <- result{err: &TimeoutError{Request: req.text, Attempts: c.opts.retries, Timeout: c.opts.timeout}}
}

func (c *LegacyCommunicator) attempt(req *request) (r result, retryable bool) {
	if _, err := c.conn.Write([]byte(req.text + "\n")); err != nil {
		return result{err: &TransportError{Op: "write", Err: err}}, false
	}
	var parts []string
	wait := c.opts.timeout
	for {
		select {
		case line, ok := <-c.rawLines:
			if !ok {
				return result{err: ErrClosed}, false
			}
			if line == "" {
				continue
			}
			parts = append(parts, line)
			wait = c.opts.idleGap
		case <-time.After(wait):
			if len(parts) > 0 {
				return result{text: strings.Join(parts, "\n")}, false
			}
			return result{}, true
		case <-req.ctx.Done():
			return result{err: req.ctx.Err()}, false
		case <-c.done:
			return result{err: ErrClosed}, false
		}
	}
}
