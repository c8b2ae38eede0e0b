// Command dpmctl is an interactive controller for DPM86xx power supplies.
//
// It connects to a supply through a serial-over-TCP bridge (ser2net, Elfin
// EW11 and similar) and offers a command console for setpoints, output
// switching and readings.
//
// Usage:
//
//	dpmctl [flags]
//
// Flags:
//
//	-bridge string     TCP address of the serial bridge (host:port)
//	-address int       Device bus address 1-99 (default 1)
//	-profile string    Use a named profile from the profile file
//	-profiles string   Profile file path (default "profiles.yaml")
//	-timeout duration  Read timeout for replies (overrides the profile)
//	-trace string      Write a CBOR protocol trace to this file
//
// Examples:
//
//	# Connect directly to a bridge
//	dpmctl -bridge 192.168.4.20:3000 -address 1
//
//	# Connect using a named profile
//	dpmctl -profile bench
//
//	# Record a protocol trace for dpm-log
//	dpmctl -bridge 192.168.4.20:3000 -trace session.dlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dpm-protocol/dpm86-go/cmd/dpmctl/interactive"
	"github.com/dpm-protocol/dpm86-go/internal/profiles"
	"github.com/dpm-protocol/dpm86-go/pkg/device"
	dpmlog "github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/transport"
)

// Config holds the controller configuration.
type Config struct {
	Bridge      string
	Address     int
	Profile     string
	ProfileFile string
	Timeout     time.Duration
	TraceFile   string
}

var config Config

func init() {
	flag.StringVar(&config.Bridge, "bridge", "", "TCP address of the serial bridge (host:port)")
	flag.IntVar(&config.Address, "address", 1, "Device bus address (1-99)")
	flag.StringVar(&config.Profile, "profile", "", "Use a named profile from the profile file")
	flag.StringVar(&config.ProfileFile, "profiles", "profiles.yaml", "Profile file path")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Read timeout for replies (overrides the profile)")
	flag.StringVar(&config.TraceFile, "trace", "", "Write a CBOR protocol trace to this file")
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	bridgeCfg, address, err := resolveTarget()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dev, err := device.New(address)
	if err != nil {
		log.Fatalf("Invalid device address: %v", err)
	}

	log.Printf("Connecting to bridge %s (device address %02d)...", bridgeCfg.Address, address)
	bridge, err := transport.Dial(bridgeCfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer bridge.Close()

	if config.TraceFile != "" {
		logger, err := dpmlog.NewFileLogger(config.TraceFile)
		if err != nil {
			log.Fatalf("Failed to open trace file: %v", err)
		}
		defer logger.Close()
		dev.SetLogger(logger)
		bridge.SetLogger(logger, dev.SessionID())
		log.Printf("Tracing protocol to %s", config.TraceFile)
	}

	dev.Bind(bridge)
	log.Printf("Connected (%s)", bridge.RemoteAddr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	console, err := interactive.New(dev)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(console.Stdout())
	go console.Run(ctx, cancel)

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled by the quit command
	}

	log.Println("Goodbye!")
}

// resolveTarget turns the flags into a bridge configuration and a device
// address, either directly or through a named profile.
func resolveTarget() (transport.BridgeConfig, int, error) {
	if config.Profile != "" {
		set, err := profiles.Load(config.ProfileFile)
		if err != nil {
			return transport.BridgeConfig{}, 0, err
		}
		p, ok := set[config.Profile]
		if !ok {
			return transport.BridgeConfig{}, 0, fmt.Errorf("profile %q not found in %s", config.Profile, config.ProfileFile)
		}

		cfg := p.BridgeConfig()
		if config.Timeout > 0 {
			cfg.ReadTimeout = config.Timeout
		}
		return cfg, p.Address, nil
	}

	if config.Bridge == "" {
		return transport.BridgeConfig{}, 0, fmt.Errorf("either -bridge or -profile is required")
	}

	return transport.BridgeConfig{
		Address:     config.Bridge,
		ReadTimeout: config.Timeout,
	}, config.Address, nil
}
