package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"

	"gitlab.com/docmill/docmill-support/common"
)

const versionsSeparator = "-----------------------------------"

type dependencyModule struct {
	Path    string            `json:"path"`
	Version string            `json:"version"`
	Sum     string            `json:"sum,omitempty"`
	Replace *dependencyModule `json:"replace,omitempty"`
}

type dependencyReport struct {
	GoVersion string             `json:"go_version"`
	Main      dependencyModule   `json:"main"`
	Deps      []dependencyModule `json:"deps"`
}

// dependenciesReport renders the module graph of the running binary. The
// graph is only present in binaries built from a module, so a plain error
// document takes its place otherwise.
func dependenciesReport() []byte {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return []byte(`{"error": "build info unavailable"}`)
	}

	report := dependencyReport{
		GoVersion: info.GoVersion,
		Main:      moduleReport(&info.Main),
		Deps: lo.Map(info.Deps, func(module *debug.Module, _ int) dependencyModule {
			return moduleReport(module)
		}),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return []byte(`{"error": "build info unavailable"}`)
	}

	return data
}

func moduleReport(module *debug.Module) dependencyModule {
	report := dependencyModule{
		Path:    module.Path,
		Version: module.Version,
		Sum:     module.Sum,
	}

	if module.Replace != nil {
		replace := moduleReport(module.Replace)
		report.Replace = &replace
	}

	return report
}

// versionsReport renders the version box shown to maintainers triaging a
// report.
func versionsReport(meta Metadata) []byte {
	engine := common.EngineVersion()
	if engine == "" {
		engine = "unknown"
	}

	installID := meta.InstallID
	if installID == "" {
		installID = "unknown"
	}

	lines := []string{
		versionsSeparator,
		"  Docmill Support: " + common.AppVersion.Version,
		"  Docmill: " + engine,
		versionsSeparator,
		"  Platform: " + common.AppVersion.OS + "/" + common.AppVersion.Architecture,
		"  Go: " + common.AppVersion.GOVersion,
		versionsSeparator,
		"  Install ID: " + installID,
		"  Report ID: " + meta.ReportID,
		versionsSeparator,
	}

	return []byte(strings.Join(lines, "\n"))
}

type checksumEntry struct {
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

type checksumReport struct {
	Algorithm string          `json:"algorithm"`
	Files     []checksumEntry `json:"files"`
}

// checksumsReport hashes the collected regular files so maintainers can
// tell whether an archive was edited after creation. Hashing runs in
// parallel, one goroutine per core.
func checksumsReport(dir string, files map[string]os.FileInfo) ([]byte, error) {
	paths := make([]string, 0, len(files))
	for path, info := range files {
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	report := checksumReport{
		Algorithm: "sha256",
		Files: iter.Map(paths, func(path *string) checksumEntry {
			return checksumFile(dir, *path)
		}),
	}

	return json.MarshalIndent(report, "", "  ")
}

func checksumFile(dir, path string) checksumEntry {
	entry := checksumEntry{Path: path}

	file, err := os.Open(filepath.Join(dir, path))
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		entry.Error = err.Error()
		return entry
	}

	entry.Digest = hex.EncodeToString(hash.Sum(nil))

	return entry
}
