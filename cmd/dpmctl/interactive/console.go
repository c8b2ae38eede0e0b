// Package interactive provides the interactive command-line interface
// for dpmctl.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dpm-protocol/dpm86-go/pkg/device"
	"github.com/dpm-protocol/dpm86-go/pkg/wire"
)

// Console handles interactive mode for dpmctl.
type Console struct {
	dev *device.Device
	rl  *readline.Instance
}

// New creates a new interactive console for the given device session.
func New(dev *device.Device) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dpm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		dev: dev,
		rl:  rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "s":
			c.cmdStatus()

		case "volts", "v":
			c.cmdVolts(args)

		case "amps", "a":
			c.cmdAmps(args)

		case "vc":
			c.cmdVoltsAmps(args)

		case "on":
			c.cmdOutput(true)

		case "off":
			c.cmdOutput(false)

		case "temp", "t":
			c.cmdTemp()

		case "mode":
			c.cmdMode()

		case "max":
			c.cmdMax()

		case "read", "r":
			c.cmdRead(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
DPM Supply Commands:
  Setpoints:
    volts [v]     - Read or set the voltage setpoint (volts)
    amps [a]      - Read or set the current limit (amperes)
    vc <v> <a>    - Set voltage and current in one command

  Output:
    on            - Enable the output
    off           - Disable the output

  Readings:
    status        - Show setpoints, output, mode and temperature
    temp          - Read the supply temperature
    mode          - Read the regulation mode (CV/CC)
    max           - Read the voltage and current ceilings
    read <fm>     - Read a raw function member (0-99)

  General:
    help          - Show this help
    quit          - Exit`)
}

// cmdStatus shows the supply status.
func (c *Console) cmdStatus() {
	out := c.rl.Stdout()

	fmt.Fprintln(out, "\nSupply Status")
	fmt.Fprintln(out, "-------------------------------------------")
	fmt.Fprintf(out, "  Address:         %02d\n", c.dev.Address())

	if volts, err := c.dev.VoltageSetting(); err == nil {
		fmt.Fprintf(out, "  Voltage setting: %.2f V\n", volts)
	} else {
		fmt.Fprintf(out, "  Voltage setting: error: %v\n", err)
		return
	}
	if amps, err := c.dev.CurrentSetting(); err == nil {
		fmt.Fprintf(out, "  Current setting: %.3f A\n", amps)
	}

	if on, err := c.dev.OutputEnabled(); err == nil {
		state := "off"
		if on {
			state = "on"
		}
		fmt.Fprintf(out, "  Output:          %s\n", state)
	}
	if mode, err := c.dev.Mode(); err == nil {
		fmt.Fprintf(out, "  Mode:            %s\n", mode)
	}

	actualV, errV := c.dev.ActualVoltage()
	actualA, errA := c.dev.ActualCurrent()
	if errV == nil && errA == nil {
		fmt.Fprintf(out, "  Actual:          %.2f V  %.3f A\n", actualV, actualA)
	}

	if temp, err := c.dev.Temperature(); err == nil {
		fmt.Fprintf(out, "  Temperature:     %d C\n", temp)
	}

	fmt.Fprintln(out)
}

// cmdVolts reads or sets the voltage setpoint.
func (c *Console) cmdVolts(args []string) {
	if len(args) == 0 {
		volts, err := c.dev.VoltageSetting()
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Voltage setting: %.2f V\n", volts)
		return
	}

	volts, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid voltage: %v\n", err)
		return
	}

	acked, err := c.dev.SetVoltage(volts)
	c.reportWrite(fmt.Sprintf("Voltage set to %.2f V", volts), acked, err)
}

// cmdAmps reads or sets the current limit.
func (c *Console) cmdAmps(args []string) {
	if len(args) == 0 {
		amps, err := c.dev.CurrentSetting()
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Current setting: %.3f A\n", amps)
		return
	}

	amps, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid current: %v\n", err)
		return
	}

	acked, err := c.dev.SetCurrent(amps)
	c.reportWrite(fmt.Sprintf("Current set to %.3f A", amps), acked, err)
}

// cmdVoltsAmps sets voltage and current in one protocol command.
func (c *Console) cmdVoltsAmps(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: vc <volts> <amps>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: vc 12.5 2.0")
		return
	}

	volts, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid voltage: %v\n", err)
		return
	}
	amps, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid current: %v\n", err)
		return
	}

	acked, err := c.dev.SetVoltageAndCurrent(volts, amps)
	c.reportWrite(fmt.Sprintf("Setpoints set to %.2f V, %.3f A", volts, amps), acked, err)
}

// cmdOutput switches the output on or off.
func (c *Console) cmdOutput(enabled bool) {
	state := "off"
	if enabled {
		state = "on"
	}

	acked, err := c.dev.SetOutput(enabled)
	c.reportWrite("Output "+state, acked, err)
}

// cmdTemp reads the supply temperature.
func (c *Console) cmdTemp() {
	temp, err := c.dev.Temperature()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Temperature: %d C\n", temp)
}

// cmdMode reads the regulation mode.
func (c *Console) cmdMode() {
	mode, err := c.dev.Mode()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}

	switch mode {
	case device.ModeConstantVoltage:
		fmt.Fprintln(c.rl.Stdout(), "Mode: CV (constant voltage)")
	case device.ModeConstantCurrent:
		fmt.Fprintln(c.rl.Stdout(), "Mode: CC (constant current)")
	default:
		fmt.Fprintf(c.rl.Stdout(), "Mode: %s\n", mode)
	}
}

// cmdMax reads the voltage and current ceilings.
func (c *Console) cmdMax() {
	maxV, err := c.dev.MaxVoltage()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}
	maxA, err := c.dev.MaxCurrent()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "Limits: %.2f V  %.3f A\n", maxV, maxA)
}

// cmdRead reads a raw function member.
func (c *Console) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: read <function-member>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: read 33  (temperature)")
		return
	}

	fn, err := strconv.Atoi(args[0])
	if err != nil || fn < wire.MinFunction || fn > wire.MaxFunction {
		fmt.Fprintf(c.rl.Stdout(), "Invalid function member: %s (must be %d-%d)\n",
			args[0], wire.MinFunction, wire.MaxFunction)
		return
	}

	value, err := c.dev.ReadFunction(wire.Function(fn))
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "F%02d = %d\n", fn, value)
}

// reportWrite prints the outcome of a write operation. A missing
// acknowledgment is reported but is not an error.
func (c *Console) reportWrite(action string, acked bool, err error) {
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	if !acked {
		fmt.Fprintf(c.rl.Stdout(), "%s (no acknowledgment from device)\n", action)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s\n", action)
}
