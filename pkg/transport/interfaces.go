package transport

// Channel is a bidirectional byte channel to a device.
// Implemented by LineChannel and Bridge.
type Channel interface {
	// Write sends raw bytes to the device.
	Write(p []byte) (n int, err error)

	// ReadUntil blocks until the delimiter is seen and returns everything
	// read up to and including it. Timeout behavior is implementation
	// defined.
	ReadUntil(delim []byte) ([]byte, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Channel = (*LineChannel)(nil)
	_ Channel = (*Bridge)(nil)
)
