package verify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hashicorp/go-version"
)

var (
	helpRed    = color.New(color.FgRed)
	helpYellow = color.New(color.FgYellow)
)

// HelpOnVersions explains why reports from outdated installations are not
// actionable and how to update.
func HelpOnVersions(w io.Writer, have, need *version.Version) {
	fmt.Fprintln(w)
	helpRed.Fprintln(w, "  When reporting issues, please first update to the latest")
	helpRed.Fprintln(w, "  version of Docmill, as the problem might already be fixed")
	helpRed.Fprintln(w, "  in the latest version. This helps reduce duplicate efforts")
	helpRed.Fprintln(w, "  and saves the maintainers time.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Please update from %s to %s.\n", have, need)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  go install gitlab.com/docmill/docmill-support@v%s\n", need)
	fmt.Fprintln(w)
}

// HelpOnCustomizations explains why customized projects cannot be debugged
// from a bug report and lists the settings to remove.
func HelpOnCustomizations(w io.Writer) {
	fmt.Fprintln(w)
	helpRed.Fprintln(w, "  When reporting issues, you must remove all customizations")
	helpRed.Fprintln(w, "  and check if the problem persists. If not, the problem is")
	helpRed.Fprintln(w, "  caused by your overrides. Please understand that we can't")
	helpRed.Fprintln(w, "  help you debug your customizations. Please remove:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  - theme.custom_dir")
	fmt.Fprintln(w, "  - hooks")
	fmt.Fprintln(w)
	helpYellow.Fprintln(w, "  Additionally, please remove all third-party JavaScript or")
	helpYellow.Fprintln(w, "  CSS not explicitly mentioned in our documentation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  - extra_css")
	fmt.Fprintln(w, "  - extra_javascript")
	fmt.Fprintln(w)
}
