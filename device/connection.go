package device

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

// Open establishes the raw byte stream to a device. Links are URLs:
//
//	/dev/ttyUSB0            serial port
//	file:///dev/ttyUSB0     serial port
//	socket://host:port      TCP, e.g. a ser2net bridge
//	exec:./firmware-sim     subprocess speaking the protocol on stdio
//
// baud applies to serial links only.
func Open(link string, baud int) (io.ReadWriteCloser, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("could not parse link %q: %w", link, err)
	}
	switch u.Scheme {
	case "socket", "tcp":
		return openTCP(u.Host)
	case "exec":
		return openProcess(u.Opaque)
	case "file", "":
		path := u.Path
		if path == "" {
			path = link
		}
		if baud == 0 {
			baud = 9600
		}
		conn, err := serial.OpenPort(&serial.Config{Name: path, Baud: baud})
		if err != nil {
			return nil, fmt.Errorf("could not open serial port %s: %w", path, err)
		}
		log.WithFields(log.Fields{"port": path, "baud": baud}).Debug("serial port open")
		return conn, nil
	}
	return nil, fmt.Errorf("unsupported link scheme %q", u.Scheme)
}

func openTCP(host string) (io.ReadWriteCloser, error) {
	conn, err := net.DialTimeout("tcp", host, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", host, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetKeepAlive(true)
		tcp.SetKeepAlivePeriod(30 * time.Second)
	}
	return conn, nil
}

// processConn adapts a child process speaking the protocol on stdin/stdout
// into a byte stream. Used for firmware simulators during bring-up.
type processConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func openProcess(bin string) (io.ReadWriteCloser, error) {
	cmd := exec.Command(bin)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w", bin, err)
	}
	log.WithFields(log.Fields{"bin": bin, "pid": cmd.Process.Pid}).Debug("child process started")
	return &processConn{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

func (c *processConn) Read(p []byte) (int, error)  { return c.stdout.Read(p) }
func (c *processConn) Write(p []byte) (int, error) { return c.stdin.Write(p) }

func (c *processConn) Close() error {
	c.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		c.cmd.Process.Kill()
		return <-done
	}
}
