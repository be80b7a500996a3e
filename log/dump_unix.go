//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package log

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
)

// watchForGoroutinesDump dumps stacks of all goroutines on USR1. The returned
// channels signal a completed dump and watcher shutdown, for tests.
func watchForGoroutinesDump(logger *logrus.Logger, stopCh chan bool) (chan bool, chan bool) {
	dumpedCh := make(chan bool, 1)
	finishedCh := make(chan bool)

	dumpStacks := make(chan os.Signal, 1)
	signal.Notify(dumpStacks, syscall.SIGUSR1)

	go func() {
		for {
			select {
			case <-dumpStacks:
				buf := make([]byte, 1<<20)
				len := runtime.Stack(buf, true)
				logger.Printf("=== received SIGUSR1 ===\n*** goroutine dump...\n%s\n*** end\n", buf[0:len])

				select {
				case dumpedCh <- true:
				default:
				}
			case <-stopCh:
				signal.Stop(dumpStacks)
				close(finishedCh)
				return
			}
		}
	}()

	return dumpedCh, finishedCh
}
