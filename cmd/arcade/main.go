// Command arcade derives player stats from per-project game records.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/arcade/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
