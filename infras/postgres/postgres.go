package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"time"

	"hotel/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnections = 10
	maxOpenConnections = 10
)

// Connection splits reads from writes. Transactions always run on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	return &Connection{
		Read:  connect("read", DSN(cfg, pg.Read), pg.MaxRetry, pg.RetryWaitTime),
		Write: connect("write", DSN(cfg, pg.Write), pg.MaxRetry, pg.RetryWaitTime),
	}
}

// NewSingle serves reads and writes from one pool.
func NewSingle(db *sqlx.DB) *Connection {
	return &Connection{Read: db, Write: db}
}

// DSN builds a lib/pq URL for endpoint. The configured prefix is prepended to the database name.
func DSN(cfg *config.Config, endpoint config.PostgresEndpoint) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + endpoint.Name,
		RawQuery: url.Values{"sslmode": {endpoint.SSLMode}}.Encode(),
	}

	return dsn.String()
}

func connect(name, dsn string, maxRetry, waitSeconds int) *sqlx.DB {
	for attempt := 1; attempt <= max(maxRetry, 1); attempt++ {
		db, err := sqlx.Connect("postgres", dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)

			log.Info().Str("name", name).Msg("Connected to database")

			return db
		}

		log.Error().Err(err).Str("name", name).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	log.Fatal().Str("name", name).Msg("Giving up connecting to database")

	return nil
}
