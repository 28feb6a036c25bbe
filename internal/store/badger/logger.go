package badgerstore

import (
	"strings"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

// badgerLogger routes badger's printf-style logs through the app logger.
// Badger is chatty at info level so those entries are demoted to debug.
type badgerLogger struct {
	log logger.Logger
}

func newBadgerLogger(log logger.Logger) *badgerLogger {
	return &badgerLogger{log: log.With(logger.String("component", "badger"))}
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.log.Errorf(trim(f), v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warnf(trim(f), v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.log.Debugf(trim(f), v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debugf(trim(f), v...) }

func trim(f string) string { return strings.TrimRight(f, "\n") }
