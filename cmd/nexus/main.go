package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nexus/internal/launch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(launch.Report(os.Stderr, err))
}
