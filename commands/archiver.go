package commands

import (
	"github.com/sirupsen/logrus"

	"gitlab.com/docmill/docmill-support/helpers/archive"

	// auto-register default archivers/extractors
	_ "gitlab.com/docmill/docmill-support/helpers/archive/fastzip"
	_ "gitlab.com/docmill/docmill-support/helpers/archive/zipbundle"
)

// GetCompressionLevel converts the compression level name to compression level type
func GetCompressionLevel(name string) archive.CompressionLevel {
	switch name {
	case "fastest":
		return archive.FastestCompression
	case "fast":
		return archive.FastCompression
	case "slow":
		return archive.SlowCompression
	case "slowest":
		return archive.SlowestCompression
	case "default", "":
		return archive.DefaultCompression
	}

	logrus.Warningf("compression level %q is invalid, falling back to default", name)

	return archive.DefaultCompression
}
