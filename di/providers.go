package di

import (
	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"

	"github.com/rs/zerolog/log"
)

// provideKafka hands the producer to wire together with a cleanup that flushes it.
func provideKafka(cfg *config.Config, otel otel.Otel) (kafka.Client, func()) {
	client := kafka.New(cfg, otel)

	return client, func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka client")
		}
	}
}
