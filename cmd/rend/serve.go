package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openrend/rend/internal/server"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rend serve [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the table rendering server in the foreground. Normally spawned")
		fmt.Fprintln(os.Stderr, "by 'rend show' for tabular content rather than run by hand.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/rend/config.yaml)")
	host := fs.String("host", "", "Host to bind (default: configured host)")
	port := fs.Int("port", 0, "Port to bind (default: configured start port)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(cfg)

	if *host == "" {
		*host = cfg.Server.Host
	}
	if *port == 0 {
		*port = cfg.Server.StartPort
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.New(logger).ListenAndServe(ctx, *host, *port); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
