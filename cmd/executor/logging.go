package executor

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger from LOG_LEVEL and
// LOG_FORMAT.
func SetupLogger(levelStr, format string) {
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
