package runtime

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/mddl-lang/mddl/diag"
	"github.com/mddl-lang/mddl/optable"
	"github.com/mddl-lang/mddl/scheduler"
	"github.com/mddl-lang/mddl/value"
)

// ApplyIEF performs the interpreter-extended behavior code selects
// against a just-completed phrase's accumulator. code is the
// phrase's Scope.IEFCode, set by the vendor SysEx F0 4D <op> F7.
// recording is the interpreter's session-capture flag; IEF_RECORDING
// flips it.
func (r *Runtime) ApplyIEF(code optable.OpId, v value.DataRef, sched *scheduler.Scheduler, recording *bool) (value.DataRef, error) {
	switch code {
	case optable.IEF_DEFAULT:
		return v, nil

	case optable.IEF_PLAY:
		vs := v.CastToVSeq()
		if vs.Ref != nil && sched != nil {
			sched.AddSequence(vs.Ref, vs.Start, vs.Length())
		}
		return vs, nil

	case optable.IEF_PRINT:
		if v.Type == value.VALUE {
			diag.Printf("%d", v.Value)
		} else {
			diag.Printf("%s", v.String())
		}
		return v, nil

	case optable.IEF_PRINTD:
		vs := v.CastToVSeq()
		if vs.Ref != nil {
			diag.Printf("%v", vs.Ref.Expanded())
		}
		return vs, nil

	case optable.IEF_RECORDING:
		if recording != nil {
			*recording = !*recording
		}
		return v, nil

	case optable.IEF_RANDOM:
		if v.Type == value.VALUE {
			v.Value = rerollWithinDigits(v.Value)
		}
		return v, nil

	case optable.IEF_SLEEP:
		if v.Type == value.VALUE && v.Value > 0 {
			time.Sleep(time.Duration(v.Value) * time.Millisecond)
		}
		return v, nil

	case optable.IEF_NOTE_ON:
		if v.Type == value.VALUE && sched != nil {
			sched.NoteOn(uint8(v.Value), defaultNoteOnVelocity)
		}
		return v, nil

	case optable.IEF_NOTE_OFF:
		if v.Type == value.VALUE && sched != nil {
			sched.NoteOff(uint8(v.Value))
		}
		return v, nil

	default:
		return v, diag.NewSysError("unknown ief code")
	}
}

const defaultNoteOnVelocity = 100

// rerollWithinDigits draws a fresh random value in [0, 10^d), where d
// is v's decimal digit count, so the result has at most as many digits
// as v (fewer when its leading digits come up zero); v's sign is kept.
func rerollWithinDigits(v int64) int64 {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := len(strconv.FormatInt(v, 10))
	max := int64(1)
	for i := 0; i < digits; i++ {
		max *= 10
	}
	n := rand.Int63n(max)
	if neg {
		n = -n
	}
	return n
}
