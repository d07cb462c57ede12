// Package main is the entry point for the tracker CLI. Without a subcommand it
// opens the interactive menu.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/ticket-tracker/cmd/tracker/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
