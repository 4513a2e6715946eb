package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mddl-lang/mddl/config"
	"github.com/mddl-lang/mddl/ifc/midi"
	"github.com/mddl-lang/mddl/interp"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "listens on a MIDI input port and interprets the stream live",
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(runFlags)
	},
}

func play(flags *runFlagSet) error {
	if flags.listPorts {
		return printPorts()
	}

	inIndex := flags.inPort
	if inIndex < 0 {
		inIndex = 0
	}

	in, err := midi.InPort(inIndex)
	if err != nil {
		return fmt.Errorf("mddl: could not open input port %d: %w", inIndex, err)
	}
	defer midi.CloseDriver()

	sched, err := openScheduler(flags.outPort)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Launch()
		defer sched.Join()
	}

	it := interp.New(sched, config.Tempo(), config.PPQ(), config.HumanizeWindow())
	it.NoExec = flags.translate

	stop, err := midi.Listen(in, it.Feed)
	if err != nil {
		return fmt.Errorf("mddl: could not listen on input port %d: %w", inIndex, err)
	}

	done := make(chan struct{})
	ran := make(chan struct{})
	go func() {
		it.Run(done)
		close(ran)
	}()

	fmt.Fprintln(os.Stderr, "[mddl] listening, press enter to stop")
	bufio.NewReader(os.Stdin).ReadString('\n')

	stop()
	close(done)
	<-ran

	if flags.resume != "" {
		if err := it.SaveSession(flags.resume); err != nil {
			fmt.Fprintf(os.Stderr, "[mddl] could not save session: %s\n", err)
		}
	}

	return nil
}
