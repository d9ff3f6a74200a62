// AngelaMos | 2026
// schema.go

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/membership-api/internal/auth"
	"github.com/carterperez-dev/templates/membership-api/internal/config"
	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/eid"
	"github.com/carterperez-dev/templates/membership-api/internal/property"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

// schemaSteps lists every table owner in foreign-key order.
var schemaSteps = []core.SchemaFunc{
	user.EnsureSchema,
	auth.EnsureSchema,
	eid.EnsureSchema,
	property.EnsureSchema,
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	return core.EnsureSchemas(ctx, db, schemaSteps...)
}

func schemaCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, cfg.IsDevelopment())

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process is exiting

	if err := ensureSchema(ctx, db.DB); err != nil {
		return err
	}

	logger.Info("schema is up to date", "steps", len(schemaSteps))
	return nil
}
