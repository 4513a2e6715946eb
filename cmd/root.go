package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters the live driver
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "mddl",
	Short:         "MDDL is a live-coded language whose source is a MIDI stream",
	Long:          `MDDL parses a chord-grammar MIDI performance into a running program and schedules its output back out as MIDI.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFiles(args, runFlags)
	},
}

// Execute runs the root command, recovering the cobra/setup-failure
// panics the ambient stack favors for unrecoverable errors and
// printing usage on any argument it didn't recognize rather than
// failing outright.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[mddl] %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = rootCmd.Usage()
		os.Exit(0)
	}
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(serveCmd)
	registerRunFlags(rootCmd)
}
