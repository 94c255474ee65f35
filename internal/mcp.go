package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jbrinkw/daybook/internal/mcpserver"
	"github.com/jbrinkw/daybook/internal/noteservice"
)

// RunMCP starts the MCP server on stdin/stdout with the given options.
// Logs go to stderr because stdout carries the JSON-RPC transport. The
// vault must already exist; unlike the HTTP server, this command never
// creates it.
func RunMCP(ctx context.Context, opts ...Option) error {
	d, err := bootstrap(opts, os.Stderr, false)
	if err != nil {
		return err
	}
	defer d.db.Close()

	svc := noteservice.NewService(d.store, d.db, d.logger)
	srv := mcpserver.New(svc, d.store)

	d.logger.Info("MCP server starting on stdio",
		slog.String("vault_path", d.cfg.Vault.Path),
		slog.String("sqlite_path", d.cfg.SQLite.Path))

	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	d.logger.Info("MCP server stopped")
	return nil
}
