package main

import "github.com/mddl-lang/mddl/cmd"

func main() {
	cmd.Execute()
}
