// Package main provides the communication maintenance CLI.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	communicationcmd "github.com/facultyfinder/communication/internal/cmd/communication"
	"github.com/facultyfinder/communication/internal/platform/config"
)

func main() {
	cfg, err := communicationcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := communicationcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
