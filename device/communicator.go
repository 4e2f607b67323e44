package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Communicator is the transport-level request/response engine. Requests are
// serviced strictly in order; a failed transport leaves the communicator
// closed.
type Communicator interface {
	Send(ctx context.Context, request string) (string, error)
	Connected() bool
	Close() error
}

type options struct {
	timeout     time.Duration
	retries     int
	idleGap     time.Duration
	queueSize   int
	chunkWrites bool
	chunkSize   int
	chunkGap    time.Duration
}

func defaultOptions() options {
	return options{
		timeout:   5 * time.Second,
		retries:   3,
		idleGap:   500 * time.Millisecond,
		queueSize: 32,
		chunkSize: 30,
		chunkGap:  time.Second,
	}
}

// Option adjusts communicator behaviour.
type Option func(*options)

// WithTimeout sets the per-attempt answer timeout.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithRetries sets how many attempts a request gets before it fails.
func WithRetries(n int) Option { return func(o *options) { o.retries = n } }

// WithIdleGap sets the quiet period that terminates a multi-line answer.
func WithIdleGap(d time.Duration) Option { return func(o *options) { o.idleGap = d } }

// WithChunkedWrites splits outgoing frames into small timed chunks. Works
// around USB-serial drivers that drop long writes.
func WithChunkedWrites(size int, gap time.Duration) Option {
	return func(o *options) {
		o.chunkWrites = true
		if size > 0 {
			o.chunkSize = size
		}
		if gap > 0 {
			o.chunkGap = gap
		}
	}
}

type result struct {
	text string
	err  error
}

type request struct {
	ctx  context.Context
	text string
	resp chan result
}

type wireAnswer struct {
	id   uint16
	text string
}

// SerialCommunicator implements the id-framed wire protocol: every request is
// tagged with a message id and matched to the response lines carrying that
// id. One fetcher goroutine owns the read side, one worker owns the request
// queue, so there is never more than one request in flight.
type SerialCommunicator struct {
	opts options
	log  *log.Entry
	bus  *Bus

	conn io.ReadWriteCloser
	wmu  sync.Mutex

	requests chan *request
	answers  chan wireAnswer
	rawLines chan string
	done     chan struct{}

	closeOnce sync.Once
	connected atomic.Bool
	closeErr  error

	msgID uint16
}

// NewSerial wraps an open byte stream and starts the worker and fetcher
// goroutines. The bus receives device log lines, notifications and the
// disconnect event.
func NewSerial(conn io.ReadWriteCloser, bus *Bus, opts ...Option) *SerialCommunicator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &SerialCommunicator{
		opts:     o,
		log:      log.WithField("comp", "serial"),
		bus:      bus,
		conn:     conn,
		requests: make(chan *request, o.queueSize),
		answers:  make(chan wireAnswer, 8),
		rawLines: make(chan string, 64),
		done:     make(chan struct{}),
	}
	c.connected.Store(true)
	go c.readLoop()
	go c.fetchLoop()
	go c.workLoop()
	return c
}

func (c *SerialCommunicator) Connected() bool { return c.connected.Load() }

// Send queues one request and blocks until its answer, a timeout after all
// retries, context cancellation or communicator shutdown.
func (c *SerialCommunicator) Send(ctx context.Context, text string) (string, error) {
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

func (c *SerialCommunicator) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *SerialCommunicator) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.closeErr = cause
		c.connected.Store(false)
		close(c.done)
		c.conn.Close()
		if cause != nil {
			c.log.WithError(cause).Warn("connection lost")
		}
		c.bus.Publish(TopicDisconnected, map[string]any{"error": cause})
	})
}

func (c *SerialCommunicator) readLoop() {
	sc := bufio.NewScanner(c.conn)
	sc.Buffer(make([]byte, 4096), 64*1024)
	for sc.Scan() {
		select {
		case c.rawLines <- sc.Text():
		case <-c.done:
			return
		}
	}
	close(c.rawLines)
	c.shutdown(&TransportError{Op: "read", Err: firstErr(sc.Err(), io.EOF)})
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var framedLine = regexp.MustCompile(`^(\d{1,5})#(.*)$`)

// fetchLoop assembles framed lines into answers. Consecutive lines with the
// same id form one answer; the answer is complete after the idle gap elapses
// or a line with a different id arrives.
func (c *SerialCommunicator) fetchLoop() {
	var curID uint16
	var parts []string
	flush := func() {
		if parts == nil {
			return
		}
		ans := wireAnswer{id: curID, text: strings.Join(parts, "\n")}
		parts = nil
		select {
		case c.answers <- ans:
		default:
			c.log.WithField("id", ans.id).Debug("dropping unclaimed answer")
		}
	}
	for {
		var idle <-chan time.Time
		if parts != nil {
			idle = time.After(c.opts.idleGap)
		}
		select {
		case <-c.done:
			return
		case <-idle:
			flush()
		case line, ok := <-c.rawLines:
			if !ok {
				flush()
				return
			}
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			if lvl, msg, isLog := splitLogLine(line); isLog {
				c.bus.Publish(TopicDeviceLog, map[string]any{"level": lvl, "message": msg})
				continue
			}
			if m := framedLine.FindStringSubmatch(line); m != nil {
				n, err := strconv.ParseUint(m[1], 10, 16)
				if err == nil {
					id := uint16(n)
					if parts != nil && id != curID {
						flush()
					}
					curID = id
					parts = append(parts, m[2])
					continue
				}
			}
			if parts != nil {
				// Continuation of the current answer block.
				parts = append(parts, line)
				continue
			}
			c.log.WithField("line", line).Debug("unsolicited line")
			c.bus.Publish(TopicNotify, map[string]any{"message": line})
		}
	}
}

// splitLogLine recognizes device-side log output, e.g. "LOG [WARN] overload".
func splitLogLine(line string) (level, message string, ok bool) {
	if !strings.HasPrefix(line, "LOG") {
		return "", "", false
	}
	rest := strings.TrimLeft(line[3:], ": ")
	if strings.HasPrefix(rest, "[") {
		if end := strings.Index(rest, "]"); end > 0 {
			return strings.ToLower(rest[1:end]), strings.TrimSpace(rest[end+1:]), true
		}
	}
	return "info", rest, true
}

func (c *SerialCommunicator) workLoop() {
	for {
		select {
		case <-c.done:
			return
		case req := <-c.requests:
			c.serve(req)
		}
	}
}

func (c *SerialCommunicator) serve(req *request) {
	if err := req.ctx.Err(); err != nil {
		req.resp <- result{err: err}
		return
	}
	for attempt := 1; attempt <= c.opts.retries; attempt++ {
		id := c.nextID()
		frame := fmt.Sprintf("%d#%s\n", id, req.text)
		if err := c.write([]byte(frame)); err != nil {
			terr := &TransportError{Op: "write", Err: err}
			req.resp <- result{err: terr}
			c.shutdown(terr)
			return
		}
		deadline := time.After(c.opts.timeout)
	wait:
		for {
			select {
			case a := <-c.answers:
				if a.id != id {
					c.log.WithFields(log.Fields{"want": id, "got": a.id}).Debug("discarding stale answer")
					continue
				}
				req.resp <- result{text: a.text}
				return
			case <-deadline:
				c.log.WithFields(log.Fields{"id": id, "attempt": attempt}).Warn("answer timeout")
				break wait
			case <-req.ctx.Done():
				req.resp <- result{err: req.ctx.Err()}
				return
			case <-c.done:
				req.resp <- result{err: ErrClosed}
				return
			}
		}
	}
	// Timeouts are recoverable; only transport errors tear the
	// connection down.
	req.resp <- result{err: &TimeoutError{Request: req.text, Attempts: c.opts.retries, Timeout: c.opts.timeout}}
}

func (c *SerialCommunicator) nextID() uint16 {
	c.msgID++
	if c.msgID == 0 {
		c.msgID = 1
	}
	return c.msgID
}

func (c *SerialCommunicator) write(frame []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if !c.opts.chunkWrites {
		_, err := c.conn.Write(frame)
		return err
	}
	for len(frame) > 0 {
		n := c.opts.chunkSize
		if n > len(frame) {
			n = len(frame)
		}
		if _, err := c.conn.Write(frame[:n]); err != nil {
			return err
		}
		frame = frame[n:]
		if len(frame) > 0 {
			time.Sleep(c.opts.chunkGap)
		}
	}
	return nil
}
