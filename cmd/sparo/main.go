package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/sparo/cmd/sparo/cmd"
	"github.com/msto63/sparo/pkg/core/config"
)

// closeTimeout bounds the final telemetry flush
const closeTimeout = 2 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app, err := cmd.NewApp(cfg, cmd.AppOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result := app.Run(ctx, os.Args[1:])
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		app.Logger.WithError(err).Warn("shutdown incomplete")
	}

	return result.ExitCode
}
