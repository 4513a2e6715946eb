// Package note implements the Note record: the field-wise event
// that every Sequence element is built from.
package note

// Note is a single MIDI-derived event record. Duration and Wait are
// tick counts; arithmetic on all four fields wraps on overflow like
// any other fixed-width Go integer.
type Note struct {
	Pitch    uint8
	Velocity uint8
	Duration int32
	Wait     int32
}

// Zero is the canonical empty Note, used as the prototype of a
// compressed empty Sequence.
var Zero = Note{}

func (n Note) Equal(rhs Note) bool {
	return n == rhs
}

func (n *Note) Add(rhs Note) {
	n.Pitch += rhs.Pitch
	n.Velocity += rhs.Velocity
	n.Duration += rhs.Duration
	n.Wait += rhs.Wait
}

func (n *Note) Sub(rhs Note) {
	n.Pitch -= rhs.Pitch
	n.Velocity -= rhs.Velocity
	n.Duration -= rhs.Duration
	n.Wait -= rhs.Wait
}

func (n *Note) Mul(rhs Note) {
	n.Pitch *= rhs.Pitch
	n.Velocity *= rhs.Velocity
	n.Duration *= rhs.Duration
	n.Wait *= rhs.Wait
}

func (n *Note) Div(rhs Note) {
	n.Pitch /= rhs.Pitch
	n.Velocity /= rhs.Velocity
	n.Duration /= rhs.Duration
	n.Wait /= rhs.Wait
}
