//go:build !integration

package commands

import (
	"archive/zip"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/helpers"
	logtest "gitlab.com/docmill/docmill-support/log/test"
)

func testInProjectDir(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(t.TempDir()))

	// the temporary directory may live behind a symlink
	dir, err := os.Getwd()
	require.NoError(t, err)

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})

	return dir
}

func writeSiteFile(t *testing.T, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

// makeExitToPanic converts process exits into panics, so tests survive the
// halt at the end of a bundle run.
func makeExitToPanic(t *testing.T) {
	t.Helper()

	logger := logrus.StandardLogger()
	saved := logger.ExitFunc
	logger.ExitFunc = func(code int) {
		panic(fmt.Sprintf("exit %d", code))
	}

	t.Cleanup(func() {
		logger.ExitFunc = saved
	})
}

func withAppVersion(t *testing.T, version string) {
	t.Helper()

	saved := common.AppVersion
	t.Cleanup(func() {
		common.AppVersion = saved
	})

	common.AppVersion.Version = version
}

func bundleEntryNames(t *testing.T, name string) []string {
	t.Helper()

	reader, err := zip.OpenReader(name)
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}

	return names
}

func TestBundleCreatesArchive(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\n")
	writeSiteFile(t, "docs/index.md", "# Example\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	names := bundleEntryNames(t, "docmill-support.zip")
	assert.Contains(t, names, "docmill-support/docmill.yml")
	assert.Contains(t, names, "docmill-support/docs/index.md")
	assert.Contains(t, names, "docmill-support/.dependencies.json")
	assert.Contains(t, names, "docmill-support/.versions.log")
	assert.Contains(t, names, "docmill-support/.checksums.json")
}

func TestBundleCustomArchiveName(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  archive_name: example\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.Panics(t, func() {
		cmd.Execute(nil)
	})

	assert.Contains(t, bundleEntryNames(t, "example.zip"), "example/docmill.yml")
}

func TestBundleIncludesBuiltSite(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\n")
	writeSiteFile(t, "docs/index.md", "# Example\n")
	writeSiteFile(t, "site/index.html", "<html></html>\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.Panics(t, func() {
		cmd.Execute(nil)
	})

	names := bundleEntryNames(t, "docmill-support.zip")
	assert.Contains(t, names, "docmill-support/docs/index.md")
	assert.Contains(t, names, "docmill-support/site/index.html")
}

func TestBundleExtraPathsAndExcludes(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\n")
	writeSiteFile(t, "docs/index.md", "# Example\n")
	writeSiteFile(t, "docs/drafts/wip.md", "draft\n")
	writeSiteFile(t, "notes.txt", "notes\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	cmd.Paths = []string{"notes.txt"}
	cmd.Exclude = []string{"docs/drafts/**"}

	assert.Panics(t, func() {
		cmd.Execute(nil)
	})

	names := bundleEntryNames(t, "docmill-support.zip")
	assert.Contains(t, names, "docmill-support/notes.txt")
	assert.Contains(t, names, "docmill-support/docs/index.md")
	assert.NotContains(t, names, "docmill-support/docs/drafts/wip.md")
}

func TestBundleDisabled(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  enabled: false\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.NotPanics(t, func() {
		cmd.Execute(nil)
	})

	assert.NoFileExists(t, "docmill-support.zip")
}

func TestBundleArchiveDisabled(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  archive: false\n")

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.NoFileExists(t, "docmill-support.zip")
}

func TestBundleMissingConfiguration(t *testing.T) {
	testInProjectDir(t)

	removeHook := helpers.MakeFatalToPanic()
	defer removeHook()

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.Panics(t, func() {
		cmd.Execute(nil)
	})
}

func TestBundleStopsOnBlockingCustomization(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", `site_name: Example
theme:
  name: docmill
  custom_dir: overrides
`)

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.NoFileExists(t, "docmill-support.zip")
}

func TestBundleContinuesOnViolationWhenConfigured(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)

	writeSiteFile(t, "docmill.yml", `site_name: Example
theme:
  name: docmill
  custom_dir: overrides
support:
  archive_stop_on_violation: false
`)

	cmd := BundleCommand{SkipVersionCheck: true}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.FileExists(t, "docmill-support.zip")
}

func TestBundleUpToDateVersion(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)
	withAppVersion(t, "9.5.3")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://gitlab.com/docmill/docmill/-/releases/v9.5.3")
		w.WriteHeader(http.StatusFound)
	}))
	defer ts.Close()

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  endpoint: "+ts.URL+"\n")

	cmd := BundleCommand{}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.FileExists(t, "docmill-support.zip")
}

func TestBundleOutdatedVersionStops(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)
	withAppVersion(t, "9.5.3")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://gitlab.com/docmill/docmill/-/releases/v99.0.0")
		w.WriteHeader(http.StatusFound)
	}))
	defer ts.Close()

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  endpoint: "+ts.URL+"\n")

	cmd := BundleCommand{}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.NoFileExists(t, "docmill-support.zip")
}

func TestBundleVersionCheckFailureContinues(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)
	withAppVersion(t, "9.5.3")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	hook, cleanup := logtest.NewHook()
	defer cleanup()

	writeSiteFile(t, "docmill.yml", "site_name: Example\nsupport:\n  endpoint: "+ts.URL+"\n")

	cmd := BundleCommand{}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.FileExists(t, "docmill-support.zip")

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "Version check failed") {
			warned = true
		}
	}
	assert.True(t, warned, "expected a version check warning")
}

func TestBundleDevelopmentBuildSkipsVersionCheck(t *testing.T) {
	testInProjectDir(t)
	makeExitToPanic(t)
	withAppVersion(t, "development version")

	writeSiteFile(t, "docmill.yml", "site_name: Example\n")

	cmd := BundleCommand{}
	assert.PanicsWithValue(t, "exit 1", func() {
		cmd.Execute(nil)
	})

	assert.FileExists(t, "docmill-support.zip")
}
