package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mddl-lang/mddl/config"
	"github.com/mddl-lang/mddl/ifc/httpapi"
	"github.com/mddl-lang/mddl/ifc/midi"
	"github.com/mddl-lang/mddl/interp"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "performs live like play, plus a debug HTTP endpoint over the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(runFlags)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7801", "debug HTTP listen address")
}

func serve(flags *runFlagSet) error {
	inIndex := flags.inPort
	if inIndex < 0 {
		inIndex = 0
	}

	in, err := midi.InPort(inIndex)
	if err != nil {
		return err
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

	stop, err := midi.Listen(in, it.Feed)
	if err != nil {
		return err
	}
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go it.Run(done)

	srv := httpapi.New(it)
	return srv.ListenAndServe(serveAddr)
}
