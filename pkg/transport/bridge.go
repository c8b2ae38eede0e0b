package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dpm-protocol/dpm86-go/pkg/log"
)

// Bridge defaults.
const (
	// DefaultDialTimeout is the default timeout for establishing the TCP
	// connection to the bridge.
	DefaultDialTimeout = 10 * time.Second
)

// ErrBridgeClosed indicates an operation on a closed bridge.
var ErrBridgeClosed = errors.New("bridge closed")

// BridgeConfig configures a serial-over-TCP bridge connection.
type BridgeConfig struct {
	// Address is the TCP address of the bridge (host:port).
	Address string

	// DialTimeout bounds connection establishment (default: 10s).
	DialTimeout time.Duration

	// ReadTimeout bounds each ReadUntil call. Zero means no deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds each Write call. Zero means no deadline.
	WriteTimeout time.Duration
}

// Validate checks the configuration.
func (c *BridgeConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("bridge address is required")
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// Bridge is a Channel over a TCP connection to a serial-over-TCP adapter
// (ser2net, Elfin EW11 and similar). Deadlines from the config are applied
// around each operation; the line protocol itself has no timeouts.
type Bridge struct {
	config BridgeConfig
	conn   net.Conn
	line   *LineChannel

	closeCh   chan struct{}
	closeOnce sync.Once
}

// Dial connects to the bridge described by config.
func Dial(config BridgeConfig) (*Bridge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}

	conn, err := net.DialTimeout("tcp", config.Address, config.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	bridge := &Bridge{
		config:  config,
		conn:    conn,
		line:    NewLineChannel(conn),
		closeCh: make(chan struct{}),
	}
	bridge.line.remoteAddr = conn.RemoteAddr().String()

	return bridge, nil
}

// SetLogger configures trace logging for this bridge.
// Pass nil to disable logging.
func (b *Bridge) SetLogger(logger log.Logger, sessionID string) {
	b.line.SetLogger(logger, sessionID)
}

// LocalAddr returns the local network address.
func (b *Bridge) LocalAddr() net.Addr {
	return b.conn.LocalAddr()
}

// RemoteAddr returns the bridge's network address.
func (b *Bridge) RemoteAddr() net.Addr {
	return b.conn.RemoteAddr()
}

// Write sends raw bytes through the bridge.
func (b *Bridge) Write(p []byte) (int, error) {
	select {
	case <-b.closeCh:
		return 0, ErrBridgeClosed
	default:
	}

	if b.config.WriteTimeout > 0 {
		b.conn.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
		defer b.conn.SetWriteDeadline(time.Time{})
	}

	return b.line.Write(p)
}

// ReadUntil reads one delimiter-terminated frame from the bridge.
func (b *Bridge) ReadUntil(delim []byte) ([]byte, error) {
	select {
	case <-b.closeCh:
		return nil, ErrBridgeClosed
	default:
	}

	if b.config.ReadTimeout > 0 {
		b.conn.SetReadDeadline(time.Now().Add(b.config.ReadTimeout))
		defer b.conn.SetReadDeadline(time.Time{})
	}

	return b.line.ReadUntil(delim)
}

// Close closes the underlying connection.
// It is safe to call Close multiple times.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.closeCh)
		err = b.conn.Close()
	})
	return err
}
