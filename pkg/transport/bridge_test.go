package transport

import (
	"errors"
	"net"
	"testing"
	"time"
)

// startEchoBridge runs a TCP listener that answers every received line
// with the given response. Returns the listen address.
func startEchoBridge(t *testing.T, response string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 256)
				for {
					if _, err := c.Read(buf); err != nil {
						return
					}
					if _, err := c.Write([]byte(response)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

func TestBridgeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  BridgeConfig
		wantErr bool
	}{
		{
			name:    "valid",
			config:  BridgeConfig{Address: "10.0.0.5:8899"},
			wantErr: false,
		},
		{
			name:    "valid with timeouts",
			config:  BridgeConfig{Address: "10.0.0.5:8899", DialTimeout: time.Second, ReadTimeout: time.Second, WriteTimeout: time.Second},
			wantErr: false,
		},
		{
			name:    "missing address",
			config:  BridgeConfig{},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  BridgeConfig{Address: "10.0.0.5:8899", ReadTimeout: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDialRejectsInvalidConfig(t *testing.T) {
	_, err := Dial(BridgeConfig{})
	if err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	addr := startEchoBridge(t, ":01ok\r\n")

	bridge, err := Dial(BridgeConfig{
		Address:      addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer bridge.Close()

	if _, err := bridge.Write([]byte(":01w12=1,\r\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	frame, err := bridge.ReadUntil([]byte("\r\n"))
	if err != nil {
		t.Fatalf("ReadUntil failed: %v", err)
	}
	if string(frame) != ":01ok\r\n" {
		t.Errorf("frame = %q, want %q", frame, ":01ok\r\n")
	}
}

func TestBridgeReadTimeout(t *testing.T) {
	// Listener that accepts but never replies
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()
	done := make(chan struct{})
	defer close(done)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-done
	}()

	bridge, err := Dial(BridgeConfig{
		Address:     ln.Addr().String(),
		DialTimeout: 2 * time.Second,
		ReadTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer bridge.Close()

	start := time.Now()
	_, err = bridge.ReadUntil([]byte("\r\n"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected net timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("read blocked %v, expected prompt timeout", elapsed)
	}
}

func TestBridgeClosedOperations(t *testing.T) {
	addr := startEchoBridge(t, ":01ok\r\n")

	bridge, err := Dial(BridgeConfig{Address: addr, DialTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	if err := bridge.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Double close should not error
	if err := bridge.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := bridge.Write([]byte(":01r33=0,\r\n")); !errors.Is(err, ErrBridgeClosed) {
		t.Errorf("Write after close: got %v, want ErrBridgeClosed", err)
	}
	if _, err := bridge.ReadUntil([]byte("\r\n")); !errors.Is(err, ErrBridgeClosed) {
		t.Errorf("ReadUntil after close: got %v, want ErrBridgeClosed", err)
	}
}

func TestBridgeDialFailure(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(BridgeConfig{Address: addr, DialTimeout: time.Second})
	if err == nil {
		t.Fatal("expected dial error")
	}
}
