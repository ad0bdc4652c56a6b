package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger. Debug mode lowers the level and
// switches to a human readable console writer.
func Setup(debug bool) zerolog.Logger {
	return New(os.Stderr, debug)
}

// New builds a logger writing to w
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Caller().Logger()
	}

	return logger
}

// Requests logs one line per HTTP request
func Requests(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		ctx := logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("addr", r.RemoteAddr).
			Logger().WithContext(r.Context())

		next.ServeHTTP(w, r.WithContext(ctx))

		zerolog.Ctx(ctx).Debug().
			Dur("duration", time.Since(started)).
			Msg("http request")
	})
}
