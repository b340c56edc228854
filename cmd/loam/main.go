package main

import (
	"fmt"
	"os"

	"github.com/softwarepub/loam/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "loam: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
