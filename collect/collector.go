package collect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"gitlab.com/docmill/docmill-support/common"
)

// builtinExclude patterns are applied to every bundle. Version control
// internals and editor droppings never help with a bug report.
var builtinExclude = []string{
	".git/**",
	"node_modules/**",
	"**/.DS_Store",
}

// Collector enumerates the project files that belong in a support bundle.
// Paths may contain doublestar glob patterns and are resolved relative to the
// project directory.
type Collector struct {
	Paths   []string `long:"path" description:"Add paths to the bundle"`
	Exclude []string `long:"exclude" description:"Exclude paths from the bundle"`

	wd       string
	patterns []string
	files    map[string]os.FileInfo
	excluded map[string]int64
}

// DefaultPaths returns the standard bundle contents for a project: the site
// configuration, the lock file when present, the documentation sources, and
// the built site.
func DefaultPaths(config *common.SiteConfig) []string {
	paths := []string{config.ConfigFile}

	lockFile := filepath.Join(filepath.Dir(config.ConfigFile), common.LockFileName)
	if _, err := os.Stat(lockFile); err == nil {
		paths = append(paths, lockFile)
	}

	paths = append(paths, config.DocsDir)

	if _, err := os.Stat(config.SiteDir); err == nil {
		paths = append(paths, config.SiteDir)
	} else {
		logrus.Warningf("%s: no built site found, run `docmill build` first to include it", config.SiteDir)
	}

	return paths
}

func (c *Collector) Files() map[string]os.FileInfo {
	return c.files
}

// Sorted returns the collected paths in stable order.
func (c *Collector) Sorted() []string {
	files := make([]string, len(c.files))

	i := 0
	for file := range c.files {
		files[i] = file
		i++
	}

	sort.Strings(files)
	return files
}

func (c *Collector) process(match string) bool {
	var absolute, relative string
	var err error

	absolute, err = filepath.Abs(match)
	if err == nil {
		// Let's try to find a real relative path to an absolute from working directory
		relative, err = filepath.Rel(c.wd, absolute)
	}

	if err == nil {
		// Process path only if it lives in our project directory
		if !strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
			excluded, rule := c.isExcluded(relative)
			if excluded {
				c.exclude(rule)
				return false
			}

			err = c.add(relative)
		} else {
			err = errors.New("not supported: outside project directory")
		}
	}

	if err == nil {
		return true
	}

	if os.IsNotExist(err) {
		// We hide the error that file doesn't exist
		return false
	}

	logrus.Warningf("%s: %v", match, err)
	return false
}

func (c *Collector) isExcluded(path string) (bool, string) {
	// Both path and pattern need to be normalized with filepath.ToSlash().
	// Matching will fail with Windows machines using "\\" path separators and patterns with "/" path separators
	path = filepath.ToSlash(path)
	for _, pattern := range c.patterns {
		relPattern, err := c.findRelativePathInProject(pattern)
		if err != nil {
			logrus.Warningf("isExcluded: %v", err.Error())
			return false, ""
		}
		relPattern = filepath.ToSlash(relPattern)
		excluded, err := doublestar.Match(relPattern, path)
		if err == nil && excluded {
			return true, pattern
		}
	}

	return false, ""
}

func (c *Collector) exclude(rule string) {
	c.excluded[rule]++
}

func (c *Collector) add(path string) error {
	// Always use slashes
	path = filepath.ToSlash(path)

	// Check if file exist
	info, err := os.Lstat(path)
	if err == nil {
		c.files[path] = info
	}

	return err
}

func (c *Collector) processPaths() {
	for _, path := range c.Paths {
		c.processPath(path)
	}
}

func (c *Collector) processPath(path string) {
	if path == "" {
		logrus.Warningf("No matching files. Path is empty.")
		return
	}

	rel, err := c.findRelativePathInProject(path)
	if err != nil {
		// Do not fail the bundle when a path is invalid or not found.
		logrus.Warningf("processPath: %v", err.Error())
		return
	}

	matches, err := doublestar.FilepathGlob(rel)
	if err != nil {
		logrus.Warningf("%s: %v", path, err)
		return
	}

	found := 0

	for _, match := range matches {
		err := filepath.Walk(match, func(path string, info os.FileInfo, err error) error {
			if c.process(path) {
				found++
			}
			return nil
		})
		if err != nil {
			logrus.Warningln("Walking", match, err)
		}
	}

	if found == 0 {
		logrus.Warningf(
			"%s: no matching files. Ensure that the path is relative to the project directory (%s)",
			path,
			c.wd,
		)
	} else {
		logrus.Infof("%s: found %d matching files and directories", path, found)
	}
}

func (c *Collector) findRelativePathInProject(path string) (string, error) {
	slashPath := filepath.ToSlash(path)
	if filepath.Clean(slashPath) == filepath.Clean(c.wd) {
		return ".", nil
	}

	base, patt := slashPath, ""
	// check if path contains a glob pattern
	if strings.ContainsAny(slashPath, "*?[{") {
		base, patt = doublestar.SplitPattern(slashPath)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("could not resolve absolute path %s: %v", path, err)
	}

	rel, err := filepath.Rel(c.wd, abs)
	if err != nil {
		return "", fmt.Errorf("could not resolve relative path %s: %v", path, err)
	}

	// If fully resolved relative path begins with ".." it is not a subpath of our working directory
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("path is not a subpath of project directory: %s", path)
	}

	// Relative path is needed now that our fsys "root" is at the working directory
	rel = filepath.Join(rel, patt)
	rel = filepath.FromSlash(rel)
	return rel, nil
}

// Enumerate walks the configured paths and records every file that belongs
// in the bundle.
func (c *Collector) Enumerate() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	c.wd = wd
	c.patterns = append(append(make([]string, 0, len(builtinExclude)+len(c.Exclude)), builtinExclude...), c.Exclude...)
	c.files = make(map[string]os.FileInfo)
	c.excluded = make(map[string]int64)

	c.processPaths()

	for path, count := range c.excluded {
		logrus.Infof("%s: excluded %d files", path, count)
	}

	return nil
}
