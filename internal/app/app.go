// Package app assembles the service: configuration, database, Genkit, tool
// registration, the agent and the HTTP server, with explicit construction
// order and a single Close for teardown.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fathom0/fathom/internal/agent"
	"github.com/fathom0/fathom/internal/analytics"
	"github.com/fathom0/fathom/internal/api"
	"github.com/fathom0/fathom/internal/artifact"
	"github.com/fathom0/fathom/internal/chat"
	"github.com/fathom0/fathom/internal/config"
)

// App is the assembled application. Fields are exported for the cmd layer
// and integration tests; everything is wired by Setup.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit *genkit.Genkit
	Pool   *pgxpool.Pool

	Chats     *chat.Store
	Documents *artifact.Store
	Analytics *analytics.Store

	Agent  *agent.Agent
	Server *api.Server

	otelShutdown func(context.Context) error
}

// Close releases resources in reverse construction order. Safe to call on a
// partially constructed App and safe to call twice.
func (a *App) Close() error {
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.logger().Warn("tracer shutdown", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}

	if a.Pool != nil {
		a.Pool.Close()
		a.Pool = nil
		a.logger().Debug("database pool closed")
	}

	return nil
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
