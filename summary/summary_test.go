//go:build !integration

package summary

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"gitlab.com/docmill/docmill-support/common"
)

func withoutColor(t *testing.T) {
	t.Helper()

	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestSizeRendering(t *testing.T) {
	withoutColor(t)

	tests := map[string]struct {
		value    int64
		expected string
	}{
		"bytes":         {value: 500, expected: "500.0 B"},
		"just below kB": {value: 999, expected: "999.0 B"},
		"kilobytes":     {value: 1500, expected: "1.5 kB"},
		"megabytes":     {value: 1234567, expected: "1.2 MB"},
		"zero":          {value: 0, expected: "0.0 B"},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tt.expected, Size(tt.value, 1))
		})
	}
}

func TestSizeColorThresholds(t *testing.T) {
	tests := map[string]struct {
		value    int64
		factor   int64
		expected *color.Color
	}{
		"small is green":           {value: 500, factor: 1, expected: sizeGood},
		"at threshold stays green": {value: common.ArchiveWarningSize, factor: 1, expected: sizeGood},
		"notable is yellow":        {value: 30000, factor: 1, expected: sizeNotable},
		"heavy is red":             {value: 150000, factor: 1, expected: sizeHeavy},
		"totals scale thresholds":  {value: 150000, factor: common.ArchiveTotalFactor, expected: sizeGood},
		"large total is red":       {value: 1234567, factor: common.ArchiveTotalFactor, expected: sizeHeavy},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			assert.Same(t, tt.expected, sizeColor(tt.value, tt.factor))
		})
	}
}

func TestListing(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	Listing(&buf, []Entry{
		{Name: "example-report/docs/index.md", Size: 120},
		{Name: "example-report/.versions.log", Size: 80},
	})

	assert.Equal(t, "\n  example-report/.versions.log 80.0 B\n  example-report/docs/index.md 120.0 B\n", buf.String())
}

func TestTotal(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	Total(&buf, "example-report.zip", 204800)

	assert.Equal(t, "\n  example-report.zip 204.8 kB\n\n", buf.String())
}

func TestExceedsRecommendedSize(t *testing.T) {
	assert.False(t, ExceedsRecommendedSize(common.ArchiveSizeLimit))
	assert.True(t, ExceedsRecommendedSize(common.ArchiveSizeLimit+1))
}
