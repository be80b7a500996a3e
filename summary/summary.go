package summary

import (
	"fmt"
	"io"
	"sort"

	"github.com/docker/go-units"
	"github.com/fatih/color"

	"gitlab.com/docmill/docmill-support/common"
)

// sizeUnits are decimal units, the way people read download sizes.
var sizeUnits = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB", "ZB"}

var (
	sizeGood    = color.New(color.FgGreen)
	sizeNotable = color.New(color.FgYellow)
	sizeHeavy   = color.New(color.FgRed)
	entryName   = color.New(color.FgHiBlack)
)

// Entry is a single archive member with its compressed size.
type Entry struct {
	Name string
	Size int64
}

func sizeColor(value, factor int64) *color.Color {
	switch {
	case value > common.ArchiveDangerSize*factor:
		return sizeHeavy
	case value > common.ArchiveWarningSize*factor:
		return sizeNotable
	default:
		return sizeGood
	}
}

// Size renders a byte count in 1000-based units, colored by weight. The
// factor scales the thresholds, totals use a higher one than single entries.
func Size(value, factor int64) string {
	return sizeColor(value, factor).Sprint(units.CustomSize("%3.1f %s", float64(value), 1000.0, sizeUnits))
}

// Listing prints the archive members sorted by name, each with its
// compressed size.
func Listing(w io.Writer, entries []Entry) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	fmt.Fprintln(w)
	for _, entry := range sorted {
		fmt.Fprintf(w, "  %s %s\n", entryName.Sprint(entry.Name), Size(entry.Size, 1))
	}
}

// Total prints the bundle file itself with scaled thresholds.
func Total(w io.Writer, name string, size int64) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", name, Size(size, common.ArchiveTotalFactor))
	fmt.Fprintln(w)
}

// ExceedsRecommendedSize reports whether the archive outgrew what an issue
// attachment should be.
func ExceedsRecommendedSize(size int64) bool {
	return size > common.ArchiveSizeLimit
}
