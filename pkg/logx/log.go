// Package logx provides the shared structured logger for the gateway.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log writes human-readable structured logs to stderr. Stderr is mandatory
// here: in stdio mode stdout carries protocol frames and must stay clean.
var Log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	if strings.EqualFold(os.Getenv("DEBUG"), "true") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
