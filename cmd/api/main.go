package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/eshaffer321/ledgermatch/internal/cli"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseServeFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)
	logger := cli.NewLogger(cfg, flags.Verbose, "api")

	if err := cli.RunServe(cfg, flags, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
