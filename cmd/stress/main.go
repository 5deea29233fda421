package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	stresscmd "github.com/louisbranch/wfrp-stress/internal/cmd/stress"
	"github.com/louisbranch/wfrp-stress/internal/platform/config"
)

// main serves the stress MCP tools on stdio or HTTP.
func main() {
	cfg, err := stresscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse config: %v", err)
	}
	log.SetPrefix("[STRESS] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stresscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve stress MCP: %v", err)
	}
}
