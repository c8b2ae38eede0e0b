// Command dpm-sim is a virtual DPM86xx supply served over TCP.
//
// It answers the same line protocol a real supply speaks behind a
// TCP-serial bridge, so dpmctl and protocol code can be exercised without
// hardware. Connections are served one at a time: the protocol has a
// single master, and a second connection would interleave frames on what
// is logically one serial line.
//
// Usage:
//
//	dpm-sim [flags]
//
// Flags:
//
//	-listen string       Listen address (default "localhost:3000")
//	-address int         Bus address the supply answers to (default 1)
//	-max-voltage float   Voltage ceiling in volts (default 60)
//	-max-current float   Current ceiling in amperes (default 24)
//	-temperature int     Reported temperature in degrees Celsius (default 24)
//	-trace string        Write a protocol trace to this file
//
// Examples:
//
//	# Default supply on localhost:3000
//	dpm-sim
//
//	# A 5 A supply at bus address 7, with a protocol trace
//	dpm-sim -address 7 -max-current 5 -trace sim.dlog
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	dpmlog "github.com/dpm-protocol/dpm86-go/pkg/log"
	"github.com/dpm-protocol/dpm86-go/pkg/simulator"
	"github.com/dpm-protocol/dpm86-go/pkg/units"
)

// Config holds the simulator configuration.
type Config struct {
	Listen      string
	Address     int
	MaxVoltage  float64
	MaxCurrent  float64
	Temperature int
	TraceFile   string
}

var config Config

func init() {
	flag.StringVar(&config.Listen, "listen", "localhost:3000", "Listen address")
	flag.IntVar(&config.Address, "address", 1, "Bus address the supply answers to")
	flag.Float64Var(&config.MaxVoltage, "max-voltage", 60, "Voltage ceiling in volts")
	flag.Float64Var(&config.MaxCurrent, "max-current", 24, "Current ceiling in amperes")
	flag.IntVar(&config.Temperature, "temperature", 24, "Reported temperature in degrees Celsius")
	flag.StringVar(&config.TraceFile, "trace", "", "Write a protocol trace to this file")
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	if err := validateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sim, err := simulator.New(simulator.Config{
		Address:     config.Address,
		MaxVoltage:  units.VoltsToCentivolts(config.MaxVoltage),
		MaxCurrent:  units.AmpsToMilliamperes(config.MaxCurrent),
		Temperature: config.Temperature,
	})
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if config.TraceFile != "" {
		logger, err := dpmlog.NewFileLogger(config.TraceFile)
		if err != nil {
			log.Fatalf("Failed to open trace file: %v", err)
		}
		defer logger.Close()
		sim.SetLogger(logger)
		log.Printf("Tracing protocol to %s", config.TraceFile)
	}

	ln, err := net.Listen("tcp", config.Listen)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", config.Listen, err)
	}

	log.Println("DPM86xx Virtual Supply")
	log.Println("======================")
	log.Printf("Bus address: %02d", config.Address)
	log.Printf("Limits: %.2f V  %.3f A", config.MaxVoltage, config.MaxCurrent)
	log.Printf("Listening on %s", ln.Addr())

	go serveConnections(ln, sim)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")
	ln.Close()

	log.Println("Goodbye!")
}

func validateConfig() error {
	if config.MaxVoltage <= 0 {
		return fmt.Errorf("max-voltage must be positive, got %g", config.MaxVoltage)
	}
	if config.MaxCurrent <= 0 {
		return fmt.Errorf("max-current must be positive, got %g", config.MaxCurrent)
	}
	return nil
}

// serveConnections accepts and serves one connection at a time. The line
// protocol has a single master, so concurrent connections would interleave
// frames on what is logically one serial line.
func serveConnections(ln net.Listener, sim *simulator.Simulator) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed during shutdown.
			return
		}

		log.Printf("Connection from %s", conn.RemoteAddr())
		if err := sim.Serve(conn); err != nil {
			log.Printf("Connection from %s failed: %v", conn.RemoteAddr(), err)
		} else {
			log.Printf("Connection from %s closed", conn.RemoteAddr())
		}
		conn.Close()
	}
}
