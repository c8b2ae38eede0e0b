// Package transport provides the byte channels a device session runs over.
//
// The transport layer handles:
//   - Delimiter-terminated line framing over any io.ReadWriter
//   - TCP bridging for ser2net-style serial-over-TCP adapters
//   - Per-operation deadlines on bridged connections
//   - Optional protocol trace logging of raw frames
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      ASCII Command Lines       │
//	├────────────────────────────────┤
//	│     CRLF Line Framing          │
//	├────────────────────────────────┤
//	│  Serial Port │ TCP (ser2net)   │
//	└────────────────────────────────┘
//
// # Channels
//
// The session layer talks to a Channel: anything that can write raw bytes
// and read delimiter-terminated replies. LineChannel adapts any
// io.ReadWriter (an opened serial port, a net.Conn, a net.Pipe in tests)
// into a Channel. Bridge dials a serial-over-TCP adapter and applies
// read/write deadlines around each operation, since the line protocol
// itself has no timeout mechanism.
//
// Serial port configuration (device path, baud rate, parity) is outside
// this package; open the port with your serial library of choice and wrap
// the handle in a LineChannel.
package transport
