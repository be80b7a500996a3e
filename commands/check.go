package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/log"
	"gitlab.com/docmill/docmill-support/network"
	"gitlab.com/docmill/docmill-support/verify"
)

// CheckCommand runs the bug report preflight without creating an archive.
// Unlike bundle it uses regular exit codes, so it can gate CI jobs.
type CheckCommand struct {
	ConfigFile       string `long:"config-file" env:"DOCMILL_CONFIG_FILE" description:"Site configuration file to load"`
	SkipVersionCheck bool   `long:"skip-version-check" description:"Do not compare against the latest release"`
}

func (c *CheckCommand) Execute(*cli.Context) {
	log.SetSupportFormatter()

	config, err := common.LoadSiteConfig(".", c.ConfigFile)
	if err != nil {
		logrus.Fatalln(err)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Bug report preflight"})

	t.AppendRow(table.Row{"Check", "Status", "Detail"})
	t.AppendSeparator()

	versionRow, versionFailed := c.versionRow(context.Background(), config)
	t.AppendRow(versionRow)
	t.AppendSeparator()

	customizations, customizationsFailed := customizationRows(config)
	t.AppendRows(customizations)

	fmt.Println(t.Render())

	if versionFailed || customizationsFailed {
		logrus.Fatalln("Project is not ready for a bug report")
	}

	logrus.Infoln("Project is ready for a bug report")
}

func (c *CheckCommand) versionRow(ctx context.Context, config *common.SiteConfig) (table.Row, bool) {
	if c.SkipVersionCheck {
		return table.Row{"version", statusSkip(), "version check disabled"}, false
	}

	client := network.NewReleaseClient(config.Support.GetEndpoint())

	status, err := verify.CheckVersion(ctx, client)
	if errors.Is(err, verify.ErrDevelopmentBuild) {
		return table.Row{"version", statusSkip(), "development build"}, false
	}
	if err != nil {
		return table.Row{"version", statusSkip(), err.Error()}, false
	}

	if !status.UpToDate() {
		detail := fmt.Sprintf("please update from %s to %s", status.Current, status.Latest)
		return table.Row{"version", statusFail(), detail}, true
	}

	return table.Row{"version", statusPass(), "latest release is " + status.Latest.String()}, false
}

func customizationRows(config *common.SiteConfig) ([]table.Row, bool) {
	byRule := lo.KeyBy(verify.CheckCustomizations(config), func(violation verify.Violation) string {
		return violation.Rule
	})

	failed := false
	rows := lo.Map(verify.CustomizationRules, func(rule string, _ int) table.Row {
		violation, ok := byRule[rule]
		if !ok {
			return table.Row{rule, statusPass(), "not used"}
		}

		if violation.Severity == verify.SeverityError {
			failed = true
			return table.Row{rule, statusFail(), violation.Detail}
		}

		return table.Row{rule, statusWarn(), violation.Detail}
	})

	return rows, failed
}

func statusPass() string {
	return color.New(color.FgGreen).Sprint("PASS")
}

func statusWarn() string {
	return color.New(color.FgYellow).Sprint("WARN")
}

func statusFail() string {
	return color.New(color.FgRed).Sprint("FAIL")
}

func statusSkip() string {
	return color.New(color.FgYellow).Sprint("SKIP")
}

func init() {
	common.RegisterCommand2(
		"check",
		"verify the project is ready for a bug report",
		&CheckCommand{},
	)
}
