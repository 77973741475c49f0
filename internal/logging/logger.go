// internal/logging/logger.go
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// New builds the process logger.
// Level "off" or "none" discards all output; an unknown level falls back to info.
func New(level, format string) *logrus.Logger {
	return build(level, format, os.Stdout)
}

func build(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	switch lvl := strings.ToLower(level); lvl {
	case "off", "none":
		logger.SetOutput(io.Discard)
	default:
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		logger.SetLevel(parsed)
		logger.SetOutput(out)
	}

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	return logger
}
