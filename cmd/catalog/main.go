package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fleximart-catalog/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// el error ya queda registrado por cli.Execute
	err := cli.Execute(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
