// Package profiles loads named connection presets for the dpmctl command.
//
// A profile file is a YAML map of profile name to connection settings:
//
//	bench:
//	  bridge: 192.168.4.20:3000
//	  address: 1
//	  read_timeout: 2s
//	rack:
//	  bridge: 10.0.0.7:4001
//	  address: 3
//
// The read timeout is optional; zero means replies are waited for without
// a deadline.
package profiles

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dpm-protocol/dpm86-go/pkg/transport"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// Profile is one named connection preset.
type Profile struct {
	// Bridge is the TCP address (host:port) of the serial bridge.
	Bridge string

	// Address is the device's bus address.
	Address int

	// ReadTimeout bounds each reply wait. Zero means no deadline.
	ReadTimeout time.Duration
}

// BridgeConfig returns the transport configuration for dialing this
// profile's bridge.
func (p Profile) BridgeConfig() transport.BridgeConfig {
	return transport.BridgeConfig{
		Address:     p.Bridge,
		ReadTimeout: p.ReadTimeout,
	}
}

// rawProfile is the YAML shape before durations are parsed.
type rawProfile struct {
	Bridge      string `yaml:"bridge"`
	Address     int    `yaml:"address"`
	ReadTimeout string `yaml:"read_timeout,omitempty"`
}

// LoadError describes a profile file that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses a profile file from YAML bytes.
func Parse(data []byte) (map[string]Profile, error) {
	var raw map[string]rawProfile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if len(raw) == 0 {
		return nil, &LoadError{
			Message: "no profiles defined",
		}
	}

	profiles := make(map[string]Profile, len(raw))
	for name, rp := range raw {
		p, err := resolve(name, rp)
		if err != nil {
			return nil, err
		}
		profiles[name] = p
	}

	return profiles, nil
}

// resolve validates one raw profile and parses its duration fields.
func resolve(name string, raw rawProfile) (Profile, error) {
	if raw.Bridge == "" {
		return Profile{}, &LoadError{
			Message: fmt.Sprintf("profile %q has no bridge address", name),
		}
	}
	if raw.Address < wire.MinAddress || raw.Address > wire.MaxAddress {
		return Profile{}, &LoadError{
			Message: fmt.Sprintf("profile %q: address %d outside [%d, %d]",
				name, raw.Address, wire.MinAddress, wire.MaxAddress),
		}
	}

	p := Profile{
		Bridge:  raw.Bridge,
		Address: raw.Address,
	}

	if raw.ReadTimeout != "" {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return Profile{}, &LoadError{
				Message: fmt.Sprintf("profile %q has invalid read_timeout", name),
				Cause:   err,
			}
		}
		if d < 0 {
			return Profile{}, &LoadError{
				Message: fmt.Sprintf("profile %q read_timeout must not be negative", name),
			}
		}
		p.ReadTimeout = d
	}

	return p, nil
}

// Load loads a profile file from disk.
func Load(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	profiles, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}

	return profiles, nil
}
