package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/entrypoint"
)

// commandTimeout bounds every maintenance command.
const commandTimeout = 2 * time.Minute

// loadConfig reads the environment and applies a -db override, which always
// selects the SQLite driver.
func loadConfig(dbPath string) *config.Config {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}
	return cfg
}

// withApp opens the catalog, runs fn and closes it again.
func withApp(dbPath string, fn func(ctx context.Context, app *entrypoint.App) error) error {
	app, err := entrypoint.NewApp(loadConfig(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	return fn(ctx, app)
}
