package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/ledgermatch/internal/application/service"
	"github.com/eshaffer321/ledgermatch/internal/cli"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)
	logger := cli.NewLogger(cfg, flags.Verbose, "reconcile")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunReconcile(ctx, cfg, flags, os.Stdout, logger); err != nil {
		logger.Error("reconciliation failed", "error", err)
		if errors.Is(err, service.ErrInvalidRequest) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  reconcile -job job.yaml [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  -config string   Configuration file path (default config.yaml, falls back to environment)")
	fmt.Fprintln(os.Stderr, "  -format string   table or json (default table)")
	fmt.Fprintln(os.Stderr, "  -fuzzy           Force the AI description matching pass on")
	fmt.Fprintln(os.Stderr, "  -no-fuzzy        Force the AI description matching pass off")
	fmt.Fprintln(os.Stderr, "  -no-store        Do not record the run in the database")
	fmt.Fprintln(os.Stderr, "  -verbose         Enable verbose logging")
}
