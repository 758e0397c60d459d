package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/purinat/auth-account-server/package/env"
)

type prefork struct{}

func (p prefork) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if fiber.IsChild() {
		e.Discard()
	}
}

func ParseLevel(levelStr string, defaultLevel zerolog.Level) zerolog.Level {
	if levelStr == "" {
		return defaultLevel
	}

	switch strings.ToUpper(levelStr) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "FATAL":
		return zerolog.FatalLevel
	case "PANIC":
		return zerolog.PanicLevel
	case "DISABLED", "NO", "OFF":
		return zerolog.Disabled
	default:
		return defaultLevel
	}
}

// New builds the process logger. The level comes from LOG_LEVEL; output is a
// console writer on stderr. Prefork children are muted so startup lines are
// not duplicated per worker.
func New() zerolog.Logger {
	levelStr, _ := env.Get("LOG_LEVEL", "")
	zerolog.SetGlobalLevel(ParseLevel(levelStr, zerolog.InfoLevel))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	writer := io.Writer(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
	})

	return zerolog.New(writer).With().
		Timestamp().
		Caller().
		Logger().
		Hook(prefork{})
}
