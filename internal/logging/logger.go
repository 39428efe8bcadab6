// Package logging configures the global zerolog logger for the pipeline
// Lambdas and the videoctl CLI.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnvVar selects the log level: debug, info, warn, error (default: info).
const LevelEnvVar = "VIDEO_LOG_LEVEL"

// Init sets the global level from VIDEO_LOG_LEVEL. Inside Lambda the logger
// writes JSON to stdout so CloudWatch can index the fields; elsewhere it uses
// a human-readable console writer on stderr.
func Init() {
	zerolog.SetGlobalLevel(parseLevel(os.Getenv(LevelEnvVar)))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if InLambda() {
		out = os.Stdout
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// InLambda reports whether the process runs inside the Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
