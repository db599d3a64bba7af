package logger

import (
	"io"
	"os"
	"time"

	"hotel/config"
	"hotel/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global zerolog logger at stdout: human readable in development, JSON
// lines everywhere else. An unknown or empty SERVER_LOG_LEVEL means info.
func Init(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	log.Logger = zerolog.New(output(cfg.Server.Env, os.Stdout)).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level(cfg.Server.LogLevel))

	log.Debug().Str("level", zerolog.GlobalLevel().String()).Msg("Logger initialized.")
}

func output(env string, w io.Writer) io.Writer {
	if env == constant.ServerEnvDevelopment {
		return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return w
}

func level(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return lvl
}

// ErrorWithStack logs err together with the stack of the caller.
func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}
