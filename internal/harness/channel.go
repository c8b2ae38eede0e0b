package harness

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dpm-protocol/dpm86-go/pkg/transport"
)

// ErrNoReply is returned by ReadUntil when the script has no response
// queued, standing in for a device that stays silent until the channel
// times out.
var ErrNoReply = errors.New("no reply scripted")

// ScriptedChannel plays a Script as the device side of a session. Each
// Write is matched against the next expected frame; matching writes queue
// the scripted response for the following ReadUntil.
//
// A mismatch or an exhausted script fails the Write with a descriptive
// error, which surfaces through whatever session operation triggered it.
type ScriptedChannel struct {
	mu      sync.Mutex
	script  Script
	pos     int
	pending []string
	writes  []string
}

// Compile-time interface satisfaction check.
var _ transport.Channel = (*ScriptedChannel)(nil)

// NewScriptedChannel creates a channel that follows the given script.
func NewScriptedChannel(script Script) *ScriptedChannel {
	return &ScriptedChannel{script: script}
}

// Write matches p against the next scripted exchange.
func (c *ScriptedChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := string(p)
	body, ok := strings.CutSuffix(frame, "\r\n")
	if !ok {
		return 0, fmt.Errorf("script %q: frame %q is not CRLF-terminated", c.script.Name, frame)
	}

	if c.pos >= len(c.script.Steps) {
		return 0, fmt.Errorf("script %q exhausted: unexpected frame %q", c.script.Name, body)
	}

	step := c.script.Steps[c.pos]
	c.pos++
	c.writes = append(c.writes, body)

	if body != step.Expect {
		return 0, fmt.Errorf("script %q step %d: got frame %q, want %q",
			c.script.Name, c.pos-1, body, step.Expect)
	}

	if step.Respond != "" {
		c.pending = append(c.pending, step.Respond)
	}

	return len(p), nil
}

// ReadUntil returns the next queued response terminated with delim.
func (c *ScriptedChannel) ReadUntil(delim []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return nil, ErrNoReply
	}

	body := c.pending[0]
	c.pending = c.pending[1:]
	return []byte(body + string(delim)), nil
}

// Done reports whether every scripted step has been consumed.
func (c *ScriptedChannel) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos == len(c.script.Steps)
}

// Remaining returns the number of unconsumed steps.
func (c *ScriptedChannel) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.script.Steps) - c.pos
}

// Writes returns the frame bodies received so far, in order.
func (c *ScriptedChannel) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	copy(out, c.writes)
	return out
}
