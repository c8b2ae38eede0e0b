package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see protocol traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceAddress != 0 {
		attrs = append(attrs, slog.Uint64("address", uint64(event.DeviceAddress)))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Operation != nil:
		attrs = append(attrs,
			slog.String("function", event.Operation.Function.String()),
			slog.String("access", event.Operation.Direction.String()),
			slog.Int("operand", event.Operation.Operand),
		)
		if event.Operation.Operand2 != nil {
			attrs = append(attrs, slog.Int("operand2", *event.Operation.Operand2))
		}
		if event.Operation.Value != nil {
			attrs = append(attrs, slog.Int("value", *event.Operation.Value))
		}
		if event.Operation.Acked != nil {
			attrs = append(attrs, slog.Bool("acked", *event.Operation.Acked))
		}
		if event.Operation.RoundTrip != 0 {
			attrs = append(attrs, slog.Duration("round_trip", event.Operation.RoundTrip))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
