package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	errEmptyAddr = errors.New("logstash: empty address")
	errCoolDown  = errors.New("logstash: reconnect cool-down")
)

type dialFunc func(network, addr string, timeout time.Duration) (net.Conn, error)

// LogstashWriter mirrors log lines to a Logstash TCP input. Lines are dropped,
// never queued, while the input is unreachable.
type LogstashWriter struct {
	addr     string
	dial     dialFunc
	now      func() time.Time
	timeout  time.Duration
	coolDown time.Duration

	mu      sync.Mutex
	conn    net.Conn
	retryAt time.Time
	closed  bool

	dropped atomic.Int64
}

type Option func(*LogstashWriter)

// WithTimeout bounds both dialing and each write. Default 2s.
func WithTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.timeout = d }
}

// WithCoolDown sets how long the writer waits before reconnecting after a
// failure. Default 5s.
func WithCoolDown(d time.Duration) Option {
	return func(w *LogstashWriter) { w.coolDown = d }
}

func withDialer(d dialFunc) Option {
	return func(w *LogstashWriter) { w.dial = d }
}

func withClock(now func() time.Time) Option {
	return func(w *LogstashWriter) { w.now = now }
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errEmptyAddr
	}
	w := &LogstashWriter{
		addr:     addr,
		dial:     net.DialTimeout,
		now:      time.Now,
		timeout:  2 * time.Second,
		coolDown: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write always reports the full length so the log package never sees an
// error from the mirror.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if err := w.connectLocked(); err != nil {
		w.dropped.Add(1)
		return len(p), nil
	}
	if w.timeout > 0 {
		_ = w.conn.SetWriteDeadline(w.now().Add(w.timeout))
	}
	if _, err := w.conn.Write(line); err != nil {
		w.dropped.Add(1)
		w.resetLocked()
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded.
func (w *LogstashWriter) Dropped() int64 {
	return w.dropped.Load()
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) connectLocked() error {
	if w.conn != nil {
		return nil
	}
	if w.now().Before(w.retryAt) {
		return errCoolDown
	}
	conn, err := w.dial("tcp", w.addr, w.timeout)
	if err != nil {
		w.retryAt = w.now().Add(w.coolDown)
		return err
	}
	w.conn = conn
	w.retryAt = time.Time{}
	return nil
}

func (w *LogstashWriter) resetLocked() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
	w.retryAt = w.now().Add(w.coolDown)
}
