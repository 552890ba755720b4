// Package obslog wraps logrus the way the teacher agents wrap their
// logger: a thin, named handle instead of calling the global logger
// directly from business logic.
package obslog

import "github.com/sirupsen/logrus"

// Log is a component-scoped logging handle.
type Log struct {
	entry *logrus.Entry
}

// New returns a Log bound to the given component name.
func New(logger *logrus.Logger, component string) *Log {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Log{entry: logger.WithField("component", component)}
}

func (l *Log) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Log) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Log) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Log) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Log) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }

// TraceEnabled reports whether Tracef calls would actually be emitted,
// letting callers skip building an expensive trace message (e.g. the
// per-flow debug dump carried over from ct_stats_print_contrack).
func (l *Log) TraceEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.TraceLevel)
}
