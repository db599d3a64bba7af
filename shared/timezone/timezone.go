// Package timezone pins every timestamp the hotel stores or prints to the zone named by
// APP_TIMEZONE (an IANA name such as "Asia/Jakarta"). Unknown or empty names mean UTC.
package timezone

import (
	"sync"
	"time"

	"hotel/config"

	"github.com/rs/zerolog/log"
)

var (
	location *time.Location
	once     sync.Once
)

func appLocation() *time.Location {
	once.Do(func() {
		location = load(config.Get().App.Timezone)
	})

	return location
}

func load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, using UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Now is the current time in the application zone.
func Now() time.Time {
	return time.Now().In(appLocation())
}

// Format renders t in the application zone.
func Format(t time.Time, layout string) string {
	return t.In(appLocation()).Format(layout)
}
