package seq

import "github.com/mddl-lang/mddl/note"

// AttrType selects one field of a Note (or ALL of them) as the target
// of a projected read or write. Each projected operation is
// parameterised at call time by a (get, set) selector pair instead of
// being specialized per attribute at compile time.
type AttrType uint8

const (
	ALL AttrType = iota
	PITCH
	VELOCITY
	DURATION
	WAIT
)

func (a AttrType) String() string {
	switch a {
	case ALL:
		return "ALL"
	case PITCH:
		return "PITCH"
	case VELOCITY:
		return "VELOCITY"
	case DURATION:
		return "DURATION"
	case WAIT:
		return "WAIT"
	default:
		return ""
	}
}

// Selector reads or writes a single Note field as an int64, so that
// arithmetic and assignment kernels can be written once and shared
// across every attribute pair.
type Selector struct {
	Get func(note.Note) int64
	Set func(n *note.Note, v int64)
}

var selectors = map[AttrType]Selector{
	PITCH: {
		Get: func(n note.Note) int64 { return int64(n.Pitch) },
		Set: func(n *note.Note, v int64) { n.Pitch = uint8(v) },
	},
	VELOCITY: {
		Get: func(n note.Note) int64 { return int64(n.Velocity) },
		Set: func(n *note.Note, v int64) { n.Velocity = uint8(v) },
	},
	DURATION: {
		Get: func(n note.Note) int64 { return int64(n.Duration) },
		Set: func(n *note.Note, v int64) { n.Duration = int32(v) },
	},
	WAIT: {
		Get: func(n note.Note) int64 { return int64(n.Wait) },
		Set: func(n *note.Note, v int64) { n.Wait = int32(v) },
	},
}

// Selectors looks up the (get, set) pair for a non-ALL attribute. It
// panics on ALL or an unrecognised value; callers must special-case
// ALL themselves.
func Selectors(attr AttrType) Selector {
	s, ok := selectors[attr]
	if !ok {
		panic("seq: no selector for attribute " + attr.String())
	}
	return s
}
