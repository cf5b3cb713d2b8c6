// Package main provides the odyssee CLI, a seeded space-opera voyage
// driven by a Lua storyline.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/odyssee/internal/platform/config"

	odysseecmd "github.com/louisbranch/odyssee/internal/cmd/odyssee"
)

func main() {
	cfg, err := odysseecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Usagef("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := odysseecmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
