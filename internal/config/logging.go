package config

import (
	"github.com/sirupsen/logrus" // Structured logging
)

// ConfigureLogging sets up the global logrus logger: JSON in production,
// timestamped text otherwise, at LOG_LEVEL.
func (c *Config) ConfigureLogging() {
	if c.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("log_level", c.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
