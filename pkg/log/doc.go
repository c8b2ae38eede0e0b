// Package log provides protocol-level trace logging for DPM sessions.
//
// Events are captured at two layers: raw frames as they cross the
// transport, and logical operations (register reads and writes) as the
// session executes them. Each event is encoded as a single CBOR map and
// appended to a trace file, which keeps traces compact and preserves the
// exact frame bytes for replay and debugging.
//
// # Architecture
//
//	┌──────────────┐
//	│   Session    │──── operation events (read/write round trips)
//	└──────┬───────┘
//	       │
//	┌──────┴───────┐
//	│  Transport   │──── frame events (raw bytes in/out)
//	└──────────────┘
//	       │
//	   Logger interface
//	       │
//	┌──────┴───────────────────────────┐
//	│ FileLogger / SlogAdapter / Multi │
//	└──────────────────────────────────┘
//
// # Usage
//
// Create a file logger and hand it to the components that should trace:
//
//	logger, err := log.NewFileLogger("session.dlog")
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
// Read a trace back with a Reader, optionally filtered:
//
//	layer := log.LayerSession
//	reader, err := log.NewFilteredReader("session.dlog", log.Filter{
//		Layer: &layer,
//	})
//	if err != nil {
//		return err
//	}
//	defer reader.Close()
//	for {
//		event, err := reader.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// The zero value of NoopLogger discards everything and is safe to use
// wherever tracing is optional.
package log
