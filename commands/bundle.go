package commands

import (
	"archive/zip"
	"context"
	"errors"
	"os"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/docmill/docmill-support/bundle"
	"gitlab.com/docmill/docmill-support/collect"
	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/log"
	"gitlab.com/docmill/docmill-support/network"
	"gitlab.com/docmill/docmill-support/summary"
	"gitlab.com/docmill/docmill-support/verify"
)

//nolint:lll
type BundleCommand struct {
	collect.Collector

	ConfigFile             string `long:"config-file" env:"DOCMILL_CONFIG_FILE" description:"Site configuration file to load"`
	CompressionLevel       string `long:"compression-level" env:"DOCMILL_SUPPORT_COMPRESSION_LEVEL" description:"Compression level (fastest, fast, default, slow, slowest)"`
	SkipVersionCheck       bool   `long:"skip-version-check" description:"Do not compare against the latest release"`
	SkipCustomizationCheck bool   `long:"skip-customization-check" description:"Do not inspect the configuration for customizations"`
}

func (c *BundleCommand) Execute(*cli.Context) {
	log.SetSupportFormatter()

	config, err := common.LoadSiteConfig(".", c.ConfigFile)
	if err != nil {
		logrus.Fatalln(err)
	}

	if !config.Support.IsEnabled() {
		logrus.Warningln("Support bundle creation is disabled for this project")
		return
	}

	ctx := context.Background()

	c.verifyVersion(ctx, config)

	logrus.Infoln("Started archive creation for bug report")

	c.verifyCustomizations(config)

	if !config.Support.ShouldArchive() {
		logrus.Warningln("Archive creation is disabled for this project")
		logrus.Exit(1)
	}

	result := c.assemble(ctx, config)

	if err := result.WriteFile(); err != nil {
		logrus.Fatalln(err)
	}

	logrus.Infoln("Archive successfully created:")
	c.printSummary(result)

	// a bundle run always halts the surrounding build
	logrus.Exit(1)
}

func (c *BundleCommand) verifyVersion(ctx context.Context, config *common.SiteConfig) {
	if c.SkipVersionCheck {
		logrus.Warningln("Version check disabled with --skip-version-check")
		return
	}

	client := network.NewReleaseClient(config.Support.GetEndpoint())

	status, err := verify.CheckVersion(ctx, client)
	if errors.Is(err, verify.ErrDevelopmentBuild) {
		logrus.Warningln("Skipping version check:", err)
		return
	}
	if err != nil {
		logrus.Warningln("Version check failed:", err)
		return
	}

	if status.UpToDate() {
		return
	}

	logrus.Errorln("Please update to the latest version.")
	verify.HelpOnVersions(os.Stdout, status.Current, status.Latest)

	if config.Support.ShouldStopOnViolation() {
		logrus.Exit(1)
	}
}

func (c *BundleCommand) verifyCustomizations(config *common.SiteConfig) {
	if c.SkipCustomizationCheck {
		logrus.Warningln("Customization check disabled with --skip-customization-check")
		return
	}

	violations := verify.CheckCustomizations(config)
	for _, violation := range violations {
		switch violation.Severity {
		case verify.SeverityError:
			logrus.Errorln(violation.Detail)
		default:
			logrus.Warningln(violation.Detail)
		}
	}

	if !verify.HasBlocking(violations) {
		return
	}

	verify.HelpOnCustomizations(os.Stdout)

	if config.Support.ShouldStopOnViolation() {
		logrus.Fatalln(verify.AsError(violations))
	}
}

func (c *BundleCommand) assemble(ctx context.Context, config *common.SiteConfig) *bundle.Result {
	c.Paths = append(collect.DefaultPaths(config), c.Paths...)
	c.Exclude = append(config.Support.ArchiveExclude, c.Exclude...)

	if err := c.Enumerate(); err != nil {
		logrus.Fatalln(err)
	}

	bundler := bundle.New(
		config.Support.GetArchiveName(),
		GetCompressionLevel(c.CompressionLevel),
		config.Support.ShouldChecksum(),
		bundle.NewMetadata(),
	)

	result, err := bundler.Assemble(ctx, ".", c.Files())
	if err != nil {
		logrus.Fatalln(err)
	}

	return result
}

func (c *BundleCommand) printSummary(result *bundle.Result) {
	reader, err := result.Reader()
	if err != nil {
		logrus.Fatalln(err)
	}

	entries := lo.Map(reader.File, func(file *zip.File, _ int) summary.Entry {
		return summary.Entry{Name: file.Name, Size: int64(file.CompressedSize64)}
	})

	summary.Listing(os.Stdout, entries)
	summary.Total(os.Stdout, result.Name(), result.Size())

	if summary.ExceedsRecommendedSize(result.Size()) {
		logrus.Warningln("Archive exceeds recommended maximum size of 1 MB")
	}
}

func init() {
	common.RegisterCommand2(
		"bundle",
		"create a support bundle for a bug report",
		&BundleCommand{},
	)
}
