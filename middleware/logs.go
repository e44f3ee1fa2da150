package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request. Health checks are
// skipped to keep the log readable.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	skip := map[string]bool{
		"/health": true,
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		if err != nil {
			entry = entry.WithField("error", err.Error())
		}

		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Info("request")
		}
		return err
	}
}

// NewLogger builds the application logger. Text format with full
// timestamps, level parsed from config with info as the fallback.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return log
}
