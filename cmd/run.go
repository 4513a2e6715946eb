package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mddl-lang/mddl/config"
	"github.com/mddl-lang/mddl/ifc/midi"
	"github.com/mddl-lang/mddl/interp"
)

// runFlagSet backs the CLI surface: positional filenames, -i/-o port
// numbers, --ports, --translate, --time, plus a session-resume
// convenience.
type runFlagSet struct {
	inPort    int
	outPort   int
	listPorts bool
	translate bool
	timeIt    bool
	resume    string
}

var runFlags = &runFlagSet{inPort: -1, outPort: -1}

func registerRunFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVarP(&runFlags.inPort, "in", "i", -1, "MIDI input port number")
	cmd.PersistentFlags().IntVarP(&runFlags.outPort, "out", "o", -1, "MIDI output port number")
	cmd.PersistentFlags().BoolVar(&runFlags.listPorts, "ports", false, "list MIDI ports and exit")
	cmd.PersistentFlags().BoolVar(&runFlags.translate, "translate", false, "parse only, print the program without executing")
	cmd.PersistentFlags().BoolVar(&runFlags.timeIt, "time", false, "run and print wall timings")
	cmd.PersistentFlags().StringVar(&runFlags.resume, "resume", "", "session snapshot to resume from / save to on exit")
}

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "reads one or more SMF files and interprets them as a performance",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(args, runFlags)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// ticksToNs converts a file's own delta-accumulated tick count into
// the nanosecond unit the parser's sequence-literal capture timing
// expects, at the interpreter's configured tempo/PPQ rather than the
// SMF's own header resolution; batch interpretation doesn't need the
// file's original performance to replay in real time, only its
// relative note ordering preserved.
func ticksToNs(tick int64, tempo, ppq int) int64 {
	return int64(float64(tick) / (float64(tempo) * float64(ppq)) * 60.0 * 1e9)
}

func runFiles(files []string, flags *runFlagSet) error {
	if flags.listPorts {
		return printPorts()
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mddl [run] <file.mid> [file.mid...]")
		return nil
	}

	sched, err := openScheduler(flags.outPort)
	if err != nil {
		return err
	}
	defer midi.CloseDriver()

	tempo, ppq := config.Tempo(), config.PPQ()
	it := interp.New(sched, tempo, ppq, config.HumanizeWindow())
	it.NoExec = flags.translate

	if flags.resume != "" {
		if snap, err := interp.Load(flags.resume); err == nil {
			fmt.Fprintf(os.Stderr, "[mddl] resumed session %s: %d function(s), %d literal(s) recovered for inspection\n",
				snap.ID, len(snap.Functions), len(snap.Literals))
		} else {
			fmt.Fprintf(os.Stderr, "[mddl] could not resume %q: %s\n", flags.resume, err)
		}
	}

	if sched != nil {
		sched.Launch()
		defer sched.Join()
	}

	start := time.Now()

	// Bind every file first; execution happens once, afterward. A file
	// that begins while a sequence literal is still recording becomes
	// that literal wholesale.
	for _, name := range files {
		path, err := resolveLibraryPath(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil
		}

		tracks, err := midi.ReadSMF(path)
		if err != nil {
			return err
		}

		if it.ActiveCapture() {
			it.ForceCapture()
			for _, track := range tracks {
				for _, ev := range track {
					it.BindMsg(ev.Message, ticksToNs(ev.Tick, tempo, ppq))
				}
			}
			it.CloseCapture()
			continue
		}

		for _, track := range tracks {
			for _, ev := range track {
				it.BindMsg(ev.Message, ticksToNs(ev.Tick, tempo, ppq))
			}
		}
	}

	if flags.translate {
		it.PrintProgram()
		return nil
	}

	runStart := time.Now()
	it.RunProgram()

	if flags.resume != "" {
		if err := it.SaveSession(flags.resume); err != nil {
			fmt.Fprintf(os.Stderr, "[mddl] could not save session: %s\n", err)
		}
	}

	if flags.timeIt {
		fmt.Fprintf(os.Stderr, "[mddl] run time: %s\n", time.Since(runStart))
		fmt.Fprintf(os.Stderr, "[mddl] total time: %s\n", time.Since(start))
	}

	return nil
}
