package util

import (
	"strconv"
)

const octave = 12

var noteNames = [octave]string{
	"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b",
}

// NoteName returns the pitch class name for a MIDI note number, folded
// into one octave.
func NoteName(note int) string {
	n := note % octave
	if n < 0 {
		n += octave
	}
	return noteNames[n]
}

// SymbolString renders a syntax symbol (first note mod an octave,
// followed by signed deltas) back into note names, for tracing and
// debug printing. Deltas of a full octave or more are prefixed with
// eight times the number of octaves crossed (8 for one octave, 16 for
// two).
func SymbolString(s string) string {
	if len(s) == 0 {
		return ""
	}

	note := int(int8(s[0]))
	str := NoteName(note)

	for i := 1; i < len(s); i++ {
		delta := int(int8(s[i]))
		dist := delta
		if dist < 0 {
			dist = -dist
		}
		note += delta
		if delta < 0 {
			str += "_"
		}
		if dist >= octave {
			str += strconv.Itoa(dist / octave * 8)
		}
		if note < 0 {
			note = (note % octave) + octave
		}
		str += NoteName(note)
	}

	return str
}
