package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global zerolog logger. Dev gets a human-readable
// console writer, everything else plain JSON.
func Setup(env, service string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if env == "dev" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	log.Logger = logger.With().Timestamp().Str("service", service).Logger()
}
