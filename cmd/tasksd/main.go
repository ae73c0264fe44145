package main

import (
	"fmt"
	"os"

	"task-tracker/internal/cli"
)

func main() {
	root := cli.NewRootCommand(nil)

	if err := root.Execute(); err != nil {
		eh := cli.NewErrorHandler()
		fmt.Fprintf(os.Stderr, "Error: %v\n", eh.HandleSimple(err))
		os.Exit(eh.ExitCode(err))
	}
}
