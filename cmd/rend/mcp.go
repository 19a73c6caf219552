package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/openrend/rend/internal/mcp"
	"github.com/openrend/rend/internal/render"
	"github.com/openrend/rend/internal/screen"
	"github.com/openrend/rend/internal/server"
	"github.com/openrend/rend/internal/viewer"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: rend mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: rend mcp serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Designed to be invoked by MCP clients.")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Example (Claude Code):")
		fmt.Fprintln(os.Stdout, "  claude mcp add rend -- rend mcp serve")
		return 0
	}

	cfg, err := loadConfig("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(cfg)

	screens, err := screen.NewProvider()
	if err != nil {
		logger.Warn("no display detection available", "err", err)
		screens = noScreens{}
	}
	srv := server.NewManager(cfg.Server, logger)
	defer func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.StartTimeout())
		defer cancel()
		if err := srv.WaitRendered(waitCtx); err != nil {
			logger.Warn("table page not confirmed rendered", "err", err)
		}
		srv.Shutdown()
	}()
	manager := render.New(cfg, logger, screens, viewer.NewRegistry(cfg.Viewer, logger), srv)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := mcp.NewServer(cfg, manager).Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
