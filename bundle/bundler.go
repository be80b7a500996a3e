package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/helpers/archive"
)

// Metadata carries the identity block embedded in every bundle.
type Metadata struct {
	InstallID string
	ReportID  string
}

// NewMetadata stamps a fresh report identity. The install ID survives
// between runs, the report ID is unique to this bundle.
func NewMetadata() Metadata {
	return Metadata{
		InstallID: common.LoadOrGenerateInstallID(),
		ReportID:  uuid.NewString(),
	}
}

// Bundler assembles a support bundle: the collected project files followed
// by the generated dependency, version and checksum reports.
type Bundler struct {
	archiveName string
	level       archive.CompressionLevel
	checksums   bool
	meta        Metadata
}

func New(archiveName string, level archive.CompressionLevel, checksums bool, meta Metadata) *Bundler {
	return &Bundler{
		archiveName: archiveName,
		level:       level,
		checksums:   checksums,
		meta:        meta,
	}
}

// Assemble builds the bundle in memory. Project file paths are relative to
// dir.
func (b *Bundler) Assemble(ctx context.Context, dir string, files map[string]os.FileInfo) (*Result, error) {
	buffer := new(bytes.Buffer)

	archiver, err := archive.NewArchiver(archive.Zip, buffer, dir, b.archiveName, b.level)
	if err != nil {
		return nil, err
	}

	if err = archiver.Archive(ctx, files); err != nil {
		return nil, fmt.Errorf("archiving project files: %w", err)
	}

	now := time.Now()

	if err = archiver.WriteEntry(common.DependenciesEntry, now, dependenciesReport()); err != nil {
		return nil, fmt.Errorf("writing %s: %w", common.DependenciesEntry, err)
	}

	if err = archiver.WriteEntry(common.VersionsEntry, now, versionsReport(b.meta)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", common.VersionsEntry, err)
	}

	if b.checksums {
		report, err := checksumsReport(dir, files)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", common.ChecksumsEntry, err)
		}

		if err = archiver.WriteEntry(common.ChecksumsEntry, now, report); err != nil {
			return nil, fmt.Errorf("writing %s: %w", common.ChecksumsEntry, err)
		}
	}

	if err = archiver.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	return &Result{
		name: b.archiveName + ".zip",
		data: buffer.Bytes(),
	}, nil
}

// Result is a finished in-memory bundle.
type Result struct {
	name string
	data []byte
}

func (r *Result) Name() string {
	return r.name
}

func (r *Result) Size() int64 {
	return int64(len(r.data))
}

func (r *Result) Bytes() []byte {
	return r.data
}

// Reader opens the finished archive for inspection.
func (r *Result) Reader() (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(r.data), r.Size())
}

// WriteFile writes the bundle into the current directory.
func (r *Result) WriteFile() error {
	return os.WriteFile(r.name, r.data, 0o644)
}
