package smsc

import (
	"github.com/sirupsen/logrus"
)

// NewLogger creates a text logger with full timestamps on the given level.
func NewLogger(level string) (*logrus.Logger, error) {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(parsedLevel)
	return logger, nil
}
