package main

import (
	"context"
	"os"
	"os/signal"
)

// main is the entry point of structctl.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	exitCode := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()

	os.Exit(exitCode)
}
