// internal/infra/logger/cron.go
package logger

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronLogger adapts a logrus entry to cron.Logger.
type CronLogger struct {
	entry *logrus.Entry
}

var _ cron.Logger = (*CronLogger)(nil)

func NewCronLogger(entry *logrus.Entry) *CronLogger {
	return &CronLogger{entry: entry}
}

// Info is used by cron for routine scheduling messages, so it logs at debug.
func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}
