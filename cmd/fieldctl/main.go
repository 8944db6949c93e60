package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/fieldops/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx, cli.DefaultAppFactory, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
