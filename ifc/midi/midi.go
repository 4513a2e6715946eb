// Package midi wraps gitlab.com/gomidi/midi/v2 with the handful of
// operations MDDL needs: port discovery, reading a standard MIDI file
// back into timestamped events, and live listening on an input port.
package midi

import (
	"bytes"
	"fmt"
	"os"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Event is one message read off a standard MIDI file, with its tick
// offset from the start of its track already accumulated from the
// file's delta encoding.
type Event struct {
	Message gomidi.Message
	Tick    int64
}

// ListInPorts returns the names of every MIDI input port this machine
// currently exposes, in driver-assigned index order.
func ListInPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi: could not open driver: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midi: could not list inputs: %w", err)
	}
	return portNames(ins), nil
}

// ListOutPorts returns the names of every MIDI output port.
func ListOutPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi: could not open driver: %w", err)
	}
	defer drv.Close()

	outs, err := drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("midi: could not list outputs: %w", err)
	}
	return portNames(outs), nil
}

func portNames[T fmt.Stringer](ports []T) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

// InPort opens the input port at the given driver-assigned index, the
// same index ListInPorts names.
func InPort(index int) (drivers.In, error) {
	return gomidi.InPort(index)
}

// OutPort opens the output port at the given driver-assigned index.
func OutPort(index int) (drivers.Out, error) {
	return gomidi.OutPort(index)
}

// CloseDriver releases the underlying driver's resources. Callers
// should defer this once at process exit.
func CloseDriver() { gomidi.CloseDriver() }

// ReadSMF parses a standard MIDI file into its tracks, each a
// sequence of Events with ticks accumulated from the file's own delta
// encoding (independent of the interpreter's live tempo/PPQ, the way
// an SMF's own header declares its own resolution).
func ReadSMF(path string) ([][]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("midi: could not read %q: %w", path, err)
	}

	f, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("midi: could not parse %q: %w", path, err)
	}

	tracks := make([][]Event, len(f.Tracks))
	for i, track := range f.Tracks {
		var absTicks int64
		events := make([]Event, 0, len(track))
		for _, te := range track {
			absTicks += int64(te.Delta)
			events = append(events, Event{Message: gomidi.Message(te.Message), Tick: absTicks})
		}
		tracks[i] = events
	}

	return tracks, nil
}

// Listen opens a live callback on in, forwarding every message (note
// events, sysex, everything) to onMsg with its timestamp converted
// from milliseconds to nanoseconds, the unit the syntax parser's
// capture timing works in (ReadSMF instead returns raw file ticks,
// which its caller converts). It returns the stop function gomidi's
// ListenTo hands back.
func Listen(in drivers.In, onMsg func(msg gomidi.Message, tickNs int64)) (func(), error) {
	return gomidi.ListenTo(in, func(msg gomidi.Message, timestampMs int32) {
		onMsg(msg, int64(timestampMs)*1_000_000)
	}, gomidi.UseSysEx())
}
