package helpers

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type panicLogHook struct {
	level  logrus.Level
	output io.Writer
}

func (s *panicLogHook) Levels() []logrus.Level {
	return []logrus.Level{s.level}
}

func (s *panicLogHook) Fire(e *logrus.Entry) error {
	_, _ = fmt.Fprintln(s.output, e.Message)

	panic(e)
}

func makeLevelToPanic(level logrus.Level) func() {
	logger := logrus.StandardLogger()
	hooks := make(logrus.LevelHooks)

	hooks.Add(&panicLogHook{level: level, output: logger.Out})
	oldHooks := logger.ReplaceHooks(hooks)

	return func() {
		logger.ReplaceHooks(oldHooks)
	}
}

// MakeFatalToPanic converts logrus fatals into panics carrying the log entry,
// so tests can intercept code paths that would otherwise exit the process.
func MakeFatalToPanic() func() {
	return makeLevelToPanic(logrus.FatalLevel)
}
