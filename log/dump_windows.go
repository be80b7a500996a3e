//go:build windows

package log

import (
	"github.com/sirupsen/logrus"
)

// Windows has no SIGUSR1 equivalent we could hook for goroutine dumps.
func watchForGoroutinesDump(logger *logrus.Logger, stopCh chan bool) (chan bool, chan bool) {
	dumpedCh := make(chan bool, 1)
	finishedCh := make(chan bool)

	go func() {
		<-stopCh
		close(finishedCh)
	}()

	return dumpedCh, finishedCh
}
