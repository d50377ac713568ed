package main

import (
	"fmt"
	"os"

	"sticky-wall/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultOpener)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
