// Package harness provides a scripted device channel for tests.
//
// A script is an ordered list of expect/respond steps: the frame the host
// is expected to send, and the frame the simulated device answers with.
// Scripts can be built inline or loaded from YAML files, which keeps
// longer conversations out of test code.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one expected exchange. Frames are written without the CRLF
// terminator; the channel handles framing.
type Step struct {
	// Expect is the exact frame body the host must send.
	Expect string `yaml:"expect"`

	// Respond is the frame body the device answers with. Empty means
	// the device stays silent and the next read fails.
	Respond string `yaml:"respond,omitempty"`
}

// Script is a named sequence of exchanges.
type Script struct {
	// Name identifies the script in failure messages.
	Name string `yaml:"name"`

	// Steps are the exchanges in order.
	Steps []Step `yaml:"steps"`
}

// LoadError describes a script that could not be loaded.
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

// ParseScript parses a script from YAML bytes.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if s.Name == "" {
		return nil, &LoadError{
			Message: "script name is required",
		}
	}
	if len(s.Steps) == 0 {
		return nil, &LoadError{
			Message: "script must have at least one step",
		}
	}
	for i, step := range s.Steps {
		if step.Expect == "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("step %d has no expect frame", i),
			}
		}
	}

	return &s, nil
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	s, err := ParseScript(data)
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

	return s, nil
}

// LoadDirectory loads all scripts from a directory.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		s, err := LoadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}

	return scripts, nil
}
