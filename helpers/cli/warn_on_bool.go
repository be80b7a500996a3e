package cli_helpers

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// WarnOnBool warns when a bare "true" or "false" shows up in the arguments.
// Boolean flags must be passed as --flag or --flag=value, a separate value
// argument makes the cli package silently drop everything after it.
func WarnOnBool(args []string) {
	// args[0] is the program name
	for idx, a := range args[1:] {
		arg := strings.ToLower(a)
		if arg != "true" && arg != "false" {
			continue
		}

		flag := "--key"
		if idx > 0 {
			flag = args[idx]
		}

		logrus.Warningf("boolean parameters must be passed in the command line with %s=%s", flag, arg)
		logrus.Warningln("parameters after this may be ignored")
		break
	}
}
