package cli_helpers

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// InitCli activates virtual terminal features on the Windows console, which
// enables the colored output used by the bundle summary and help screens.
func InitCli() {
	setConsoleMode(windows.Stdout, windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	setConsoleMode(windows.Stderr, windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}

func setConsoleMode(handle windows.Handle, flags uint32) {
	var mode uint32

	if err := windows.GetConsoleMode(handle, &mode); err == nil {
		if err := windows.SetConsoleMode(handle, mode|flags); err != nil {
			logrus.WithError(err).Info("Did not set console mode for cli")
		}
	}
}
