package commands

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/helpers/archive"
	"gitlab.com/docmill/docmill-support/log"
	"gitlab.com/docmill/docmill-support/summary"
)

// InspectCommand lists the contents of a previously created support bundle
// and optionally extracts it, the same way a maintainer triaging a report
// would.
type InspectCommand struct {
	Extract string `long:"extract" description:"Extract the bundle into this directory"`
}

func (c *InspectCommand) Execute(cliCtx *cli.Context) {
	log.SetSupportFormatter()

	name := cliCtx.Args().First()
	if name == "" {
		logrus.Fatalln("Missing bundle file name")
	}

	reader, err := zip.OpenReader(name)
	if err != nil {
		logrus.Fatalln(fmt.Errorf("opening bundle %s: %w", name, err))
	}
	defer reader.Close()

	info, err := os.Stat(name)
	if err != nil {
		logrus.Fatalln(err)
	}

	entries := lo.Map(reader.File, func(file *zip.File, _ int) summary.Entry {
		return summary.Entry{Name: file.Name, Size: int64(file.CompressedSize64)}
	})

	summary.Listing(os.Stdout, entries)
	summary.Total(os.Stdout, filepath.Base(name), info.Size())

	if summary.ExceedsRecommendedSize(info.Size()) {
		logrus.Warningln("Archive exceeds recommended maximum size of 1 MB")
	}

	if c.Extract == "" {
		return
	}

	if err := c.extract(name, info.Size()); err != nil {
		logrus.Fatalln(err)
	}
}

func (c *InspectCommand) extract(name string, size int64) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	extractor, err := archive.NewExtractor(archive.Zip, file, size, c.Extract)
	if err != nil {
		return err
	}

	logrus.WithField("dir", c.Extract).Infoln("Extracting bundle")

	return extractor.Extract(context.Background())
}

func init() {
	common.RegisterCommand2(
		"inspect",
		"list the contents of a support bundle",
		&InspectCommand{},
	)
}
