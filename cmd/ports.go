package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mddl-lang/mddl/ifc/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "lists MIDI input and output ports and exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPorts()
	},
}

func printPorts() error {
	ins, err := midi.ListInPorts()
	if err != nil {
		return err
	}
	outs, err := midi.ListOutPorts()
	if err != nil {
		return err
	}

	fmt.Println("inputs:")
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("outputs:")
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}
