package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. JSON to stdout; level falls back to info on
// an unparseable value.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
