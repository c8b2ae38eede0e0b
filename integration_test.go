package dpm86_test

import (
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dpm-protocol/dpm86-go/pkg/device"
	dpmlog "github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/simulator"
	"github.com/dpm-protocol/dpm86-go/pkg/transport"
)

// startSimulator serves sim over the device side of a pipe and returns the
// host side plus a shutdown func that waits for a clean EOF exit.
func startSimulator(t *testing.T, sim *simulator.Simulator) (net.Conn, func()) {
	t.Helper()

	hostConn, devConn := net.Pipe()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- sim.Serve(devConn)
	}()

	shutdown := func() {
		hostConn.Close()
		if err := <-serveDone; err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
		devConn.Close()
	}
	return hostConn, shutdown
}

// TestE2E_SetAndReadBack drives a full setpoint cycle against the simulated
// supply: program voltage and current, enable the output, and read
// everything back through the session API.
func TestE2E_SetAndReadBack(t *testing.T) {
	sim, err := simulator.New(simulator.Config{Address: 1})
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	hostConn, shutdown := startSimulator(t, sim)
	defer shutdown()

	dev, err := device.New(1)
	if err != nil {
		t.Fatalf("Failed to create device session: %v", err)
	}
	dev.Bind(transport.NewLineChannel(hostConn))

	// Program the setpoints
	if acked, err := dev.SetVoltage(12.34); err != nil || !acked {
		t.Fatalf("SetVoltage: acked=%v err=%v", acked, err)
	}
	if acked, err := dev.SetCurrent(0.5); err != nil || !acked {
		t.Fatalf("SetCurrent: acked=%v err=%v", acked, err)
	}

	// Output is still off, so actuals read as zero
	actualV, err := dev.ActualVoltage()
	if err != nil {
		t.Fatalf("ActualVoltage: %v", err)
	}
	if actualV != 0 {
		t.Errorf("expected 0 V with output off, got %.2f", actualV)
	}

	if acked, err := dev.SetOutput(true); err != nil || !acked {
		t.Fatalf("SetOutput: acked=%v err=%v", acked, err)
	}

	// Read everything back
	volts, err := dev.VoltageSetting()
	if err != nil {
		t.Fatalf("VoltageSetting: %v", err)
	}
	if volts != 12.34 {
		t.Errorf("expected 12.34 V, got %.2f", volts)
	}

	amps, err := dev.CurrentSetting()
	if err != nil {
		t.Fatalf("CurrentSetting: %v", err)
	}
	if amps != 0.5 {
		t.Errorf("expected 0.5 A, got %.3f", amps)
	}

	on, err := dev.OutputEnabled()
	if err != nil {
		t.Fatalf("OutputEnabled: %v", err)
	}
	if !on {
		t.Error("expected output enabled")
	}

	actualV, err = dev.ActualVoltage()
	if err != nil {
		t.Fatalf("ActualVoltage: %v", err)
	}
	if actualV != 12.34 {
		t.Errorf("expected 12.34 V actual, got %.2f", actualV)
	}

	mode, err := dev.Mode()
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	if mode != device.ModeConstantVoltage {
		t.Errorf("expected CV mode, got %s", mode)
	}

	temp, err := dev.Temperature()
	if err != nil {
		t.Fatalf("Temperature: %v", err)
	}
	if temp != 24 {
		t.Errorf("expected 24 C, got %d", temp)
	}
}

// TestE2E_CombinedWriteClamped programs voltage and current in one frame
// against a supply with low ceilings and verifies both are clamped.
func TestE2E_CombinedWriteClamped(t *testing.T) {
	sim, err := simulator.New(simulator.Config{
		Address:    1,
		MaxVoltage: 2000, // 20 V
		MaxCurrent: 1000, // 1 A
	})
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	hostConn, shutdown := startSimulator(t, sim)
	defer shutdown()

	dev, err := device.New(1)
	if err != nil {
		t.Fatalf("Failed to create device session: %v", err)
	}
	dev.Bind(transport.NewLineChannel(hostConn))

	if acked, err := dev.SetVoltageAndCurrent(25.0, 2.5); err != nil || !acked {
		t.Fatalf("SetVoltageAndCurrent: acked=%v err=%v", acked, err)
	}

	volts, err := dev.VoltageSetting()
	if err != nil {
		t.Fatalf("VoltageSetting: %v", err)
	}
	if volts != 20.0 {
		t.Errorf("expected clamp to 20.00 V, got %.2f", volts)
	}

	amps, err := dev.CurrentSetting()
	if err != nil {
		t.Fatalf("CurrentSetting: %v", err)
	}
	if amps != 1.0 {
		t.Errorf("expected clamp to 1.000 A, got %.3f", amps)
	}
}

// TestE2E_TCPBridge runs the same session over a real TCP connection, the
// way a serial-over-TCP adapter is used in the field.
func TestE2E_TCPBridge(t *testing.T) {
	sim, err := simulator.New(simulator.Config{Address: 1})
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	serveDone := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serveDone <- err
			return
		}
		defer conn.Close()
		serveDone <- sim.Serve(conn)
	}()

	bridge, err := transport.Dial(transport.BridgeConfig{
		Address:     ln.Addr().String(),
		ReadTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to dial bridge: %v", err)
	}

	dev, err := device.New(1)
	if err != nil {
		t.Fatalf("Failed to create device session: %v", err)
	}
	dev.Bind(bridge)

	if acked, err := dev.SetVoltage(5.55); err != nil || !acked {
		t.Fatalf("SetVoltage: acked=%v err=%v", acked, err)
	}

	volts, err := dev.VoltageSetting()
	if err != nil {
		t.Fatalf("VoltageSetting: %v", err)
	}
	if volts != 5.55 {
		t.Errorf("expected 5.55 V, got %.2f", volts)
	}

	bridge.Close()
	if err := <-serveDone; err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
}

// TestE2E_ForeignAddressTimesOut verifies the multi-drop silence rule end
// to end: a request addressed to a device that is not on the line gets no
// reply, which the host sees as a read timeout.
func TestE2E_ForeignAddressTimesOut(t *testing.T) {
	sim, err := simulator.New(simulator.Config{Address: 1})
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		sim.Serve(conn)
	}()

	bridge, err := transport.Dial(transport.BridgeConfig{
		Address:     ln.Addr().String(),
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to dial bridge: %v", err)
	}
	defer bridge.Close()

	// Session for address 2, but only address 1 is on the line
	dev, err := device.New(2)
	if err != nil {
		t.Fatalf("Failed to create device session: %v", err)
	}
	dev.Bind(bridge)

	_, err = dev.VoltageSetting()
	if err == nil {
		t.Fatal("expected timeout reading from absent device")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

// TestE2E_TraceRoundTrip records a session against the simulator to a trace
// file and reads it back, checking that frames, operations, and the bind
// state change all landed under one session ID.
func TestE2E_TraceRoundTrip(t *testing.T) {
	sim, err := simulator.New(simulator.Config{Address: 1})
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	hostConn, shutdown := startSimulator(t, sim)

	tracePath := filepath.Join(t.TempDir(), "session.dlog")
	logger, err := dpmlog.NewFileLogger(tracePath)
	if err != nil {
		t.Fatalf("Failed to create trace logger: %v", err)
	}

	dev, err := device.New(1)
	if err != nil {
		t.Fatalf("Failed to create device session: %v", err)
	}

	// Logger goes in before Bind so the bind state change is traced too
	dev.SetLogger(logger)
	ch := transport.NewLineChannel(hostConn)
	ch.SetLogger(logger, dev.SessionID())
	dev.Bind(ch)

	if acked, err := dev.SetVoltage(12.34); err != nil || !acked {
		t.Fatalf("SetVoltage: acked=%v err=%v", acked, err)
	}
	if _, err := dev.Temperature(); err != nil {
		t.Fatalf("Temperature: %v", err)
	}

	shutdown()
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close trace logger: %v", err)
	}

	// Read the whole trace back
	reader, err := dpmlog.NewReader(tracePath)
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	defer reader.Close()

	counts := make(map[dpmlog.Category]int)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		counts[event.Category]++

		if event.SessionID != dev.SessionID() {
			t.Errorf("event session %q does not match %q", event.SessionID, dev.SessionID())
		}
	}

	// One write and one read: a request and a reply frame each
	if counts[dpmlog.CategoryFrame] != 4 {
		t.Errorf("expected 4 frame events, got %d", counts[dpmlog.CategoryFrame])
	}
	if counts[dpmlog.CategoryOperation] != 2 {
		t.Errorf("expected 2 operation events, got %d", counts[dpmlog.CategoryOperation])
	}
	if counts[dpmlog.CategoryState] != 1 {
		t.Errorf("expected 1 state event, got %d", counts[dpmlog.CategoryState])
	}

	// Filtered read sees only the operations
	opCat := dpmlog.CategoryOperation
	filtered, err := dpmlog.NewFilteredReader(tracePath, dpmlog.Filter{Category: &opCat})
	if err != nil {
		t.Fatalf("Failed to open filtered trace: %v", err)
	}
	defer filtered.Close()

	ops := 0
	for {
		event, err := filtered.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read filtered event: %v", err)
		}
		if event.Operation == nil {
			t.Error("filtered event is missing operation details")
		}
		ops++
	}
	if ops != 2 {
		t.Errorf("expected 2 filtered operation events, got %d", ops)
	}
}
