package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"jarsrc/internal/cli"
)

// main is a thin boundary: build the command tree, run it with a
// SIGINT-cancelable context, and map the error to a semantic exit code.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp()
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.ExitCodeFor(err))
	}
}
