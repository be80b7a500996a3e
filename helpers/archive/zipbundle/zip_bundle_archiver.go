package zipbundle

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/sirupsen/logrus"

	"gitlab.com/docmill/docmill-support/helpers/archive"
)

func init() {
	archive.Register(archive.Zip, NewArchiver, nil)
}

// zipUTF8Flag marks filenames and comments as UTF-8 encoded (EFS).
const zipUTF8Flag = 0x800

var flateLevels = map[archive.CompressionLevel]int{
	archive.FastestCompression: 0,
	archive.FastCompression:    1,
	archive.DefaultCompression: 5,
	archive.SlowCompression:    7,
	archive.SlowestCompression: 9,
}

// archiver writes a support bundle as a zip stream.
type archiver struct {
	zw     *zip.Writer
	dir    string
	prefix string
	store  bool
}

// NewArchiver returns a new Zip Archiver.
func NewArchiver(w io.Writer, dir, prefix string, level archive.CompressionLevel) (archive.Archiver, error) {
	zw := zip.NewWriter(w)

	store := level == archive.FastestCompression
	if !store {
		flateLevel := flateLevels[level]
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flateLevel)
		})
	}

	return &archiver{
		zw:     zw,
		dir:    dir,
		prefix: prefix,
		store:  store,
	}, nil
}

// Archive adds the files provided, in stable name order. Paths are relative
// to the directory passed to NewArchiver.
func (a *archiver) Archive(ctx context.Context, files map[string]os.FileInfo) error {
	sorted := make([]string, 0, len(files))
	for filename := range files {
		sorted = append(sorted, filename)
	}
	sort.Strings(sorted)

	for _, filename := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.archiveEntry(filename); err != nil {
			return err
		}
	}

	return nil
}

func (a *archiver) archiveEntry(filename string) error {
	diskPath := filepath.Join(a.dir, filename)

	// stat again, the file may be gone since collection
	fi, err := os.Lstat(diskPath)
	if err != nil {
		logrus.Warningln("File ignored:", err)
		return nil
	}

	fh, err := zip.FileInfoHeader(fi)
	if err != nil {
		return err
	}
	fh.Name = path.Join(a.prefix, filepath.ToSlash(filename))
	fh.Flags |= zipUTF8Flag

	switch fi.Mode() & os.ModeType {
	case os.ModeDir:
		return a.createDirectoryEntry(fh)

	case os.ModeSymlink:
		return a.createSymlinkEntry(fh, diskPath)

	case os.ModeNamedPipe, os.ModeSocket, os.ModeDevice:
		// Ignore the files that of these types
		logrus.Warningln("File ignored:", filename)
		return nil

	default:
		return a.createFileEntry(fh, diskPath)
	}
}

func (a *archiver) createDirectoryEntry(fh *zip.FileHeader) error {
	fh.Name += "/"
	_, err := a.zw.CreateHeader(fh)
	return err
}

func (a *archiver) createSymlinkEntry(fh *zip.FileHeader, diskPath string) error {
	fw, err := a.zw.CreateHeader(fh)
	if err != nil {
		return err
	}

	link, err := os.Readlink(diskPath)
	if err != nil {
		return err
	}

	_, err = io.WriteString(fw, link)
	return err
}

func (a *archiver) createFileEntry(fh *zip.FileHeader, diskPath string) error {
	if a.store {
		fh.Method = zip.Store
	} else {
		fh.Method = zip.Deflate
	}

	fw, err := a.zw.CreateHeader(fh)
	if err != nil {
		return err
	}

	file, err := os.Open(diskPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(fw, file)
	_ = file.Close()
	return err
}

// WriteEntry adds a generated report entry.
func (a *archiver) WriteEntry(name string, modTime time.Time, data []byte) error {
	fh := &zip.FileHeader{
		Name:     path.Join(a.prefix, name),
		Method:   zip.Deflate,
		Modified: modTime,
	}
	fh.Flags |= zipUTF8Flag
	fh.SetMode(0o644)
	if a.store {
		fh.Method = zip.Store
	}

	fw, err := a.zw.CreateHeader(fh)
	if err != nil {
		return err
	}

	_, err = fw.Write(data)
	return err
}

func (a *archiver) Close() error {
	return a.zw.Close()
}
