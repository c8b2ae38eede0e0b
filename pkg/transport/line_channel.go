package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dpm-protocol/dpm86-go/pkg/log"
)

// Framing constants.
const (
	// DefaultMaxFrameSize is the default maximum frame size in bytes.
	// Well-formed frames are under 25 bytes; the cap guards against a
	// noisy line that never produces a delimiter.
	DefaultMaxFrameSize = 256
)

// Framing errors.
var (
	// ErrFrameTooLong indicates the delimiter was not seen within the
	// maximum frame size.
	ErrFrameTooLong = errors.New("frame too long")

	// ErrEmptyDelimiter indicates ReadUntil was called with no delimiter.
	ErrEmptyDelimiter = errors.New("empty delimiter")
)

// LineChannel adapts any io.ReadWriter into a Channel by scanning reads
// for a frame delimiter. Reads are buffered: bytes following a delimiter
// stay buffered for the next ReadUntil call.
type LineChannel struct {
	rw           io.ReadWriter
	br           *bufio.Reader
	maxFrameSize int

	writeMu sync.Mutex
	readMu  sync.Mutex

	// Logging support (optional)
	logger     log.Logger
	sessionID  string
	remoteAddr string
}

// NewLineChannel creates a channel over rw with the default frame size cap.
func NewLineChannel(rw io.ReadWriter) *LineChannel {
	return NewLineChannelWithMaxSize(rw, DefaultMaxFrameSize)
}

// NewLineChannelWithMaxSize creates a channel with a custom frame size cap.
// A cap of 0 disables the limit.
func NewLineChannelWithMaxSize(rw io.ReadWriter, maxSize int) *LineChannel {
	return &LineChannel{
		rw:           rw,
		br:           bufio.NewReader(rw),
		maxFrameSize: maxSize,
	}
}

// SetLogger configures trace logging for this channel.
// Pass nil to disable logging.
func (c *LineChannel) SetLogger(logger log.Logger, sessionID string) {
	c.logger = logger
	c.sessionID = sessionID
}

// Write sends raw bytes to the device.
// Thread-safe: can be called from multiple goroutines.
func (c *LineChannel) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	n, err := c.rw.Write(p)
	if err != nil {
		return n, err
	}

	if c.logger != nil {
		c.logger.Log(c.makeFrameEvent(p, log.DirectionOut))
	}

	return n, nil
}

// ReadUntil reads until delim is seen and returns everything read,
// including the delimiter. Bytes after the delimiter remain buffered.
// Underlying read errors are returned as-is so callers can match on them.
func (c *LineChannel) ReadUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrEmptyDelimiter
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()

	var frame []byte
	for {
		// Scan to the delimiter's final byte, then check the whole
		// delimiter actually ended the chunk.
		chunk, err := c.br.ReadBytes(delim[len(delim)-1])
		frame = append(frame, chunk...)
		if err != nil {
			return nil, err
		}
		if bytes.HasSuffix(frame, delim) {
			break
		}
		if c.maxFrameSize > 0 && len(frame) > c.maxFrameSize {
			return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLong, len(frame), c.maxFrameSize)
		}
	}

	if c.maxFrameSize > 0 && len(frame) > c.maxFrameSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLong, len(frame), c.maxFrameSize)
	}

	if c.logger != nil {
		c.logger.Log(c.makeFrameEvent(frame, log.DirectionIn))
	}

	return frame, nil
}

// makeFrameEvent creates a trace event for a frame.
func (c *LineChannel) makeFrameEvent(data []byte, direction log.Direction) log.Event {
	frameData := data
	truncated := false

	if len(data) > log.MaxFrameDataSize {
		frameData = data[:log.MaxFrameDataSize]
		truncated = true
	}

	// Copy so later buffer reuse cannot corrupt the logged frame.
	stored := make([]byte, len(frameData))
	copy(stored, frameData)

	return log.Event{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		Direction:  direction,
		Layer:      log.LayerTransport,
		Category:   log.CategoryFrame,
		RemoteAddr: c.remoteAddr,
		Frame: &log.FrameEvent{
			Size:      len(data),
			Data:      stored,
			Truncated: truncated,
		},
	}
}
