package test

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// NewHook installs a hook on the global logger that captures entries for
// tests. The returned function removes it and restores the previous hooks.
//
// Prefer passing a logger into the structure under test and hooking that
// logger locally. This exists for code paths that still log through the
// global logger.
func NewHook() (*test.Hook, func()) {
	// Copy all the previous hooks so we revert back to that state.
	oldHooks := logrus.LevelHooks{}
	for level, hooks := range logrus.StandardLogger().Hooks {
		oldHooks[level] = hooks
	}

	newHook := test.NewGlobal()
	return newHook, func() {
		logrus.StandardLogger().ReplaceHooks(oldHooks)
	}
}
