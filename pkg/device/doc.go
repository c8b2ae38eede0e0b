// Package device implements the host-side session for a DPM86xx power
// supply.
//
// A Device is created for a fixed bus address and later bound to a
// transport channel. Every operation is one synchronous request/response
// exchange on that channel: writes return whether the supply acknowledged,
// reads return the register value in wire units or converted to physical
// units.
//
// # Usage
//
//	dev, err := device.New(1)
//	if err != nil {
//		return err
//	}
//
//	bridge, err := transport.Dial(transport.BridgeConfig{
//		Address:     "10.0.0.5:8899",
//		ReadTimeout: 2 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer bridge.Close()
//
//	dev.Bind(bridge)
//
//	acked, err := dev.SetVoltage(12.34)
//	if err != nil {
//		return err
//	}
//	if !acked {
//		// the supply did not confirm the write
//	}
//
//	volts, err := dev.ActualVoltage()
//
// # Concurrency
//
// A Device serializes operations with an internal mutex held for the full
// write+read round trip, so a single Device is safe for concurrent
// callers. Sharing one channel between multiple Devices is not
// coordinated here; on a multi-drop bus the caller must serialize.
//
// # Error behavior
//
// Operations on an unbound Device fail with ErrNotConnected. Channel I/O
// errors pass through unmodified so callers can match on the channel's
// own error types. There are no retries and no timeouts at this layer;
// timeout policy belongs to the channel.
package device
