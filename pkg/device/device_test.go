package device

import (
	"errors"
	"sync"
	"testing"

	"github.com/dpm-protocol/dpm86-go/internal/harness"
	"github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// testCapturingLogger records trace events for testing.
type testCapturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *testCapturingLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *testCapturingLogger) Events() []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]log.Event, len(l.events))
	copy(result, l.events)
	return result
}

// failingChannel returns a fixed error from every operation.
type failingChannel struct {
	err error
}

func (f *failingChannel) Write(p []byte) (int, error) { return 0, f.err }

func (f *failingChannel) ReadUntil(delim []byte) ([]byte, error) { return nil, f.err }

func TestNewValidatesAddress(t *testing.T) {
	tests := []struct {
		address int
		wantErr bool
	}{
		{1, false},
		{42, false},
		{99, false},
		{0, true},
		{-3, true},
		{100, true},
	}

	for _, tt := range tests {
		dev, err := New(tt.address)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%d): expected error", tt.address)
				continue
			}
			var ve *wire.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("New(%d): expected *wire.ValidationError, got %T", tt.address, err)
			} else if ve.Field != "address" {
				t.Errorf("New(%d): error field = %q, want %q", tt.address, ve.Field, "address")
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%d) failed: %v", tt.address, err)
			continue
		}
		if dev.Address() != tt.address {
			t.Errorf("Address() = %d, want %d", dev.Address(), tt.address)
		}
	}
}

func TestSessionIDAssigned(t *testing.T) {
	dev1, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	dev2, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if dev1.SessionID() == "" {
		t.Error("SessionID is empty")
	}
	if dev1.SessionID() == dev2.SessionID() {
		t.Error("two sessions share one SessionID")
	}
}

func TestUnboundOperationsFail(t *testing.T) {
	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if dev.Bound() {
		t.Error("fresh session reports bound")
	}

	if _, err := dev.SetVoltage(5.0); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetVoltage: got %v, want ErrNotConnected", err)
	}
	if _, err := dev.Temperature(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Temperature: got %v, want ErrNotConnected", err)
	}
	if _, err := dev.SetOutput(true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetOutput: got %v, want ErrNotConnected", err)
	}
}

func TestValidationPrecedesConnectionCheck(t *testing.T) {
	// An out-of-range setpoint fails validation before the session looks
	// at its channel.
	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = dev.SetVoltage(70.3)
	var ve *wire.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *wire.ValidationError, got %v", err)
	}
	if ve.Field != "voltage" {
		t.Errorf("field = %q, want %q", ve.Field, "voltage")
	}
}

func TestBindReplacesChannel(t *testing.T) {
	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first := harness.NewScriptedChannel(harness.Script{
		Name:  "first",
		Steps: []harness.Step{{Expect: ":01r33=0,", Respond: ":01r33=245,"}},
	})
	dev.Bind(first)

	if !dev.Bound() {
		t.Fatal("session not bound after Bind")
	}

	temp, err := dev.Temperature()
	if err != nil {
		t.Fatalf("Temperature failed: %v", err)
	}
	if temp != 245 {
		t.Errorf("temperature = %d, want 245", temp)
	}

	second := harness.NewScriptedChannel(harness.Script{
		Name:  "second",
		Steps: []harness.Step{{Expect: ":01r33=0,", Respond: ":01r33=300,"}},
	})
	dev.Bind(second)

	temp, err = dev.Temperature()
	if err != nil {
		t.Fatalf("Temperature after rebind failed: %v", err)
	}
	if temp != 300 {
		t.Errorf("temperature after rebind = %d, want 300", temp)
	}
	if !first.Done() || !second.Done() {
		t.Error("scripts not fully consumed")
	}
}

func TestChannelErrorsPropagateUnmodified(t *testing.T) {
	sentinel := errors.New("serial port unplugged")

	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	dev.Bind(&failingChannel{err: sentinel})

	_, err = dev.Temperature()
	if err != sentinel {
		t.Errorf("read error = %v, want the channel's error unmodified", err)
	}

	_, err = dev.SetOutput(true)
	if err != sentinel {
		t.Errorf("write error = %v, want the channel's error unmodified", err)
	}
}

func TestWriteMismatchedAckIsNotAnError(t *testing.T) {
	tests := []struct {
		name    string
		respond string
	}{
		{"wrong address ack", ":02ok"},
		{"numeric reply", ":01r12=1,"},
		{"garbage", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := New(1)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			dev.Bind(harness.NewScriptedChannel(harness.Script{
				Name:  "nack",
				Steps: []harness.Step{{Expect: ":01w12=1,", Respond: tt.respond}},
			}))

			acked, err := dev.SetOutput(true)
			if err != nil {
				t.Fatalf("SetOutput failed: %v", err)
			}
			if acked {
				t.Error("mismatched reply reported as acked")
			}
		})
	}
}

func TestAckIsAlwaysAddress01(t *testing.T) {
	// The supply acknowledges with :01ok regardless of its bus address.
	dev, err := New(7)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	dev.Bind(harness.NewScriptedChannel(harness.Script{
		Name:  "addr7",
		Steps: []harness.Step{{Expect: ":07w12=1,", Respond: ":01ok"}},
	}))

	acked, err := dev.SetOutput(true)
	if err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}
	if !acked {
		t.Error("address-01 ack not accepted for device at address 7")
	}
}

func TestConcurrentOperationsSerialized(t *testing.T) {
	const n = 32

	steps := make([]harness.Step, n)
	for i := range steps {
		steps[i] = harness.Step{Expect: ":01r33=0,", Respond: ":01r33=245,"}
	}

	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ch := harness.NewScriptedChannel(harness.Script{Name: "concurrent", Steps: steps})
	dev.Bind(ch)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			temp, err := dev.Temperature()
			if err != nil {
				errs <- err
				return
			}
			if temp != 245 {
				errs <- errors.New("wrong value")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
	if !ch.Done() {
		t.Errorf("script has %d unconsumed steps", ch.Remaining())
	}
}

func TestTraceEvents(t *testing.T) {
	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger := &testCapturingLogger{}
	dev.SetLogger(logger)

	dev.Bind(harness.NewScriptedChannel(harness.Script{
		Name: "trace",
		Steps: []harness.Step{
			{Expect: ":01w10=1234,", Respond: ":01ok"},
			{Expect: ":01r33=0,", Respond: ":01r33=245,"},
		},
	}))

	if _, err := dev.SetVoltage(12.34); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if _, err := dev.Temperature(); err != nil {
		t.Fatalf("Temperature failed: %v", err)
	}

	events := logger.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (bind, write, read)", len(events))
	}

	bind := events[0]
	if bind.Category != log.CategoryState || bind.StateChange == nil {
		t.Fatalf("first event is not a state change: %+v", bind)
	}
	if bind.StateChange.NewState != "BOUND" {
		t.Errorf("bind new state = %q", bind.StateChange.NewState)
	}

	write := events[1]
	if write.Category != log.CategoryOperation || write.Operation == nil {
		t.Fatalf("second event is not an operation: %+v", write)
	}
	if write.Operation.Function != wire.FuncVoltageSetting {
		t.Errorf("write function = %v", write.Operation.Function)
	}
	if write.Operation.Acked == nil || !*write.Operation.Acked {
		t.Errorf("write acked = %v, want true", write.Operation.Acked)
	}
	if write.SessionID != dev.SessionID() {
		t.Errorf("write session = %q, want %q", write.SessionID, dev.SessionID())
	}
	if write.DeviceAddress != 1 {
		t.Errorf("write address = %d, want 1", write.DeviceAddress)
	}

	read := events[2]
	if read.Category != log.CategoryOperation || read.Operation == nil {
		t.Fatalf("third event is not an operation: %+v", read)
	}
	if read.Operation.Value == nil || *read.Operation.Value != 245 {
		t.Errorf("read value = %v, want 245", read.Operation.Value)
	}
}

func TestTraceErrorEvent(t *testing.T) {
	dev, err := New(1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger := &testCapturingLogger{}
	dev.SetLogger(logger)
	dev.Bind(&failingChannel{err: errors.New("wire cut")})

	if _, err := dev.Temperature(); err == nil {
		t.Fatal("expected channel error")
	}

	var errorEvents int
	for _, e := range logger.Events() {
		if e.Category == log.CategoryError {
			errorEvents++
			if e.Error == nil || e.Error.Message != "wire cut" {
				t.Errorf("error event = %+v", e.Error)
			}
		}
	}
	if errorEvents != 1 {
		t.Errorf("got %d error events, want 1", errorEvents)
	}
}

func TestRegulationModeString(t *testing.T) {
	tests := []struct {
		mode RegulationMode
		want string
	}{
		{ModeConstantVoltage, "CV"},
		{ModeConstantCurrent, "CC"},
		{RegulationMode(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("RegulationMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
