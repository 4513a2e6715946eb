package cmd

import (
	"github.com/mddl-lang/mddl/config"
	"github.com/mddl-lang/mddl/ifc/midi"
	"github.com/mddl-lang/mddl/scheduler"
)

// openScheduler opens outIndex as a MIDI output port and wraps it in a
// Scheduler. A negative outIndex (no -o given) returns a nil
// Scheduler, which every IEF_PLAY/IEF_NOTE_ON/OFF handler already
// treats as "output disabled" rather than a usage error.
func openScheduler(outIndex int) (*scheduler.Scheduler, error) {
	if outIndex < 0 {
		return nil, nil
	}

	out, err := midi.OutPort(outIndex)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(out)
	sched.SetTempo(config.Tempo())
	sched.SetPPQ(config.PPQ())
	return sched, nil
}
