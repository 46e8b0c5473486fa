// Package logging builds the zerolog loggers used across bquery.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported formats.
const (
	FormatJSON  = "json"
	FormatPlain = "plain"
	FormatText  = "text"
)

// New returns a logger writing to w in the given format at the given
// level. The plain/text format is a colorless console writer.
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	switch strings.ToLower(format) {
	case FormatPlain, FormatText:
		w = &zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}
				return "????"
			},
		}
	case FormatJSON, "":
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format: %s", format)
	}

	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level: %v", err)
	}

	return zerolog.New(w).Level(logLevel).With().Timestamp().Logger(), nil
}
