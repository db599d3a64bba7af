package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"hotel/config"
	"hotel/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStepUp = "step-up"
	DirectionDrop   = "drop"

	defaultSource = "file://migrations/postgres"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

var directions = map[string]func(*migrate.Migrate) error{
	DirectionUp:     (*migrate.Migrate).Up,
	DirectionDown:   func(m *migrate.Migrate) error { return m.Steps(-1) },
	DirectionStepUp: func(m *migrate.Migrate) error { return m.Steps(1) },
	DirectionDrop:   (*migrate.Migrate).Down,
}

// Migrate runs direction against the configured write database.
func Migrate(cfg *config.Config, direction string) error {
	dsn, err := url.Parse(postgres.DSN(cfg, cfg.DB.Postgres.Write))
	if err != nil {
		return fmt.Errorf("invalid database url: %w", err)
	}

	if table := cfg.DB.Postgres.MigrationTable; table != "" {
		query := dsn.Query()
		query.Set("x-migrations-table", table)
		dsn.RawQuery = query.Encode()
	}

	return Run(defaultSource, dsn.String(), direction)
}

// Run applies the migrations found at source to the database at dsn.
func Run(source, dsn, direction string) error {
	step, ok := directions[direction]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	mig, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	if err := step(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", direction, err)
	}

	log.Info().Str("direction", direction).Msg("Database migration finished")

	return nil
}
