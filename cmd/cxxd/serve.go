package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/jbakamovic/cxxd/internal/config"
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/mcpfront"
	"github.com/jbakamovic/cxxd/internal/outer"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the daemon, registering all four services against a project",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a .cxxd.kdl configuration document",
			Value: ".cxxd.kdl",
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "Project root directory to index (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "mcp",
			Usage: "Also serve an MCP front-end over stdio",
		},
	},
	Action: runServe,
}

func runServe(c *cli.Context) error {
	root := c.String("root")
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("serve: resolving project root: %w", err)
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("serve: resolving project root: %w", err)
	}

	cfg, err := config.LoadKDL(c.String("config"), root)
	if err != nil {
		return fmt.Errorf("serve: loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serve: invalid config: %w", err)
	}

	if c.Bool("mcp") {
		return runServeWithMCP(cfg)
	}
	return runServeDispatcherOnly(cfg)
}

// runServeDispatcherOnly starts the Server Dispatcher and blocks until a
// termination signal arrives, then enqueues SHUTDOWN_AND_EXIT and waits
// for it to drain (spec §4.8 "start_server ... stop_server").
func runServeDispatcherOnly(cfg *config.Config) error {
	h, err := outer.StartServer(cfg)
	if err != nil {
		return fmt.Errorf("serve: starting server: %w", err)
	}
	outer.StartAll(h)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	outer.StopServer(h)
	h.Dispatcher.Join()
	return nil
}

// runServeWithMCP starts both the dispatcher-routed Outer Boundary and the
// synchronous MCP front-end over stdio (SPEC_FULL.md DOMAIN STACK "MCP").
func runServeWithMCP(cfg *config.Config) error {
	h, err := outer.StartServer(cfg)
	if err != nil {
		return fmt.Errorf("serve: starting server: %w", err)
	}
	outer.StartAll(h)
	defer func() {
		outer.StopServer(h)
		h.Dispatcher.Join()
	}()

	mcpServer, err := mcpfront.New(cfg)
	if err != nil {
		return fmt.Errorf("serve: starting MCP front-end: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := mcpServer.Run(ctx); err != nil && ctx.Err() == nil {
		logging.Error("serve: mcp server exited: %v", err)
		return err
	}
	return nil
}
