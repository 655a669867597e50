package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

func NewLogger(verbose bool) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Logger: log}
}

// Alert reports a caught failure on the alert channel. Every failure the
// rebuild engine swallows and folds into its aggregate result goes through
// here, so the log is the source of per-statement detail.
func (l *Logger) Alert(args ...interface{}) {
	l.WithField("severity", "alert").Error(args...)
}

func (l *Logger) Alertf(format string, args ...interface{}) {
	l.WithField("severity", "alert").Errorf(format, args...)
}
