package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"
)

const (
	DefaultThemeName   = "docmill"
	DefaultDocsDir     = "docs"
	DefaultSiteDir     = "site"
	DefaultArchiveName = "docmill-support"
	DefaultEndpoint    = "https://gitlab.com/docmill/docmill/-/releases/permalink/latest"

	// LockFileName pins theme and plugin versions for a project.
	LockFileName = "docmill.lock"

	envPrefix   = "DOCMILL_SUPPORT"
	envFileName = ".env"
)

// SiteConfigNames are the configuration filenames probed in order.
var SiteConfigNames = []string{"docmill.yml", "docmill.yaml", "docmill.toml"}

// SupportConfig is the `support:` block of the site configuration. Boolean
// options are pointers so that absent keys can fall back to defaults.
type SupportConfig struct {
	Enabled                *bool    `yaml:"enabled,omitempty" toml:"enabled" json:"enabled,omitempty"`
	Archive                *bool    `yaml:"archive,omitempty" toml:"archive" json:"archive,omitempty"`
	ArchiveName            string   `yaml:"archive_name,omitempty" toml:"archive_name" json:"archive_name,omitempty" split_words:"true"`
	ArchiveStopOnViolation *bool    `yaml:"archive_stop_on_violation,omitempty" toml:"archive_stop_on_violation" json:"archive_stop_on_violation,omitempty" split_words:"true"`
	ArchiveExclude         []string `yaml:"archive_exclude,omitempty" toml:"archive_exclude" json:"archive_exclude,omitempty" split_words:"true"`
	ArchiveChecksums       *bool    `yaml:"archive_checksums,omitempty" toml:"archive_checksums" json:"archive_checksums,omitempty" split_words:"true"`
	Endpoint               string   `yaml:"endpoint,omitempty" toml:"endpoint" json:"endpoint,omitempty"`
}

func (c *SupportConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *SupportConfig) ShouldArchive() bool {
	return c.Archive == nil || *c.Archive
}

func (c *SupportConfig) ShouldStopOnViolation() bool {
	return c.ArchiveStopOnViolation == nil || *c.ArchiveStopOnViolation
}

func (c *SupportConfig) ShouldChecksum() bool {
	return c.ArchiveChecksums == nil || *c.ArchiveChecksums
}

// GetArchiveName returns the configured bundle name without a .zip suffix.
func (c *SupportConfig) GetArchiveName() string {
	name := c.ArchiveName
	if name == "" {
		name = DefaultArchiveName
	}

	return strings.TrimSuffix(name, ".zip")
}

func (c *SupportConfig) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}

	return c.Endpoint
}

// ThemeConfig accepts both a plain theme name and a mapping with overrides:
//
//	theme: docmill
//
//	theme:
//	  name: docmill
//	  custom_dir: overrides
type ThemeConfig struct {
	Name      string `yaml:"name" toml:"name" json:"name,omitempty"`
	CustomDir string `yaml:"custom_dir,omitempty" toml:"custom_dir" json:"custom_dir,omitempty"`
}

func (t *ThemeConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&t.Name)
	}

	type plain ThemeConfig
	return value.Decode((*plain)(t))
}

// SiteConfig is the parsed docmill project configuration.
type SiteConfig struct {
	SiteName        string        `yaml:"site_name" toml:"site_name" json:"site_name,omitempty"`
	DocsDir         string        `yaml:"docs_dir,omitempty" toml:"docs_dir" json:"docs_dir,omitempty"`
	SiteDir         string        `yaml:"site_dir,omitempty" toml:"site_dir" json:"site_dir,omitempty"`
	Theme           ThemeConfig   `yaml:"theme,omitempty" toml:"theme" json:"theme,omitempty"`
	Hooks           []string      `yaml:"hooks,omitempty" toml:"hooks" json:"hooks,omitempty"`
	ExtraCSS        []string      `yaml:"extra_css,omitempty" toml:"extra_css" json:"extra_css,omitempty"`
	ExtraJavascript []string      `yaml:"extra_javascript,omitempty" toml:"extra_javascript" json:"extra_javascript,omitempty"`
	Support         SupportConfig `yaml:"support,omitempty" toml:"support" json:"support,omitempty"`

	ConfigFile string    `yaml:"-" toml:"-" json:"-"`
	ModTime    time.Time `yaml:"-" toml:"-" json:"-"`
	Loaded     bool      `yaml:"-" toml:"-" json:"-"`
}

func NewSiteConfig() *SiteConfig {
	return &SiteConfig{
		DocsDir: DefaultDocsDir,
		SiteDir: DefaultSiteDir,
		Theme: ThemeConfig{
			Name: DefaultThemeName,
		},
	}
}

// FindSiteConfig probes dir for a site configuration file and returns its
// path, or an empty string when none exists.
func FindSiteConfig(dir string) string {
	for _, name := range SiteConfigNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return ""
}

func (c *SiteConfig) LoadConfig(configFile string) error {
	info, err := os.Stat(configFile)

	// missing file is a soft error, callers check Loaded
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	switch filepath.Ext(configFile) {
	case ".toml":
		if _, err = toml.DecodeFile(configFile, c); err != nil {
			return fmt.Errorf("decoding %s: %w", configFile, err)
		}
	default:
		data, err := os.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", configFile, err)
		}
		if err = yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("decoding %s: %w", configFile, err)
		}
	}

	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.SiteDir == "" {
		c.SiteDir = DefaultSiteDir
	}
	if c.Theme.Name == "" {
		c.Theme.Name = DefaultThemeName
	}

	c.ConfigFile = configFile
	c.ModTime = info.ModTime()
	c.Loaded = true
	return nil
}

// ApplyEnvironment layers a .env file next to the configuration and
// DOCMILL_SUPPORT_* variables over the support block. Environment values win
// over file values.
func (c *SiteConfig) ApplyEnvironment() error {
	envFile := envFileName
	if c.ConfigFile != "" {
		envFile = filepath.Join(filepath.Dir(c.ConfigFile), envFileName)
	}

	if err := loadEnvFile(envFile); err != nil {
		logrus.Warningln("Loading .env file:", err)
	}

	if err := envconfig.Process(envPrefix, &c.Support); err != nil {
		return fmt.Errorf("applying %s environment overrides: %w", envPrefix, err)
	}

	return nil
}

func loadEnvFile(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}

	env, err := godotenv.Read(filename)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	for key, value := range env {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set environment variable %s: %w", key, err)
		}
	}

	return nil
}

// LoadSiteConfig loads the project configuration for dir. When configFile is
// set it is used directly instead of probing for one.
func LoadSiteConfig(dir, configFile string) (*SiteConfig, error) {
	if configFile == "" {
		configFile = FindSiteConfig(dir)
	}
	if configFile == "" {
		return nil, fmt.Errorf("no site configuration found in %q (tried %s)", dir, strings.Join(SiteConfigNames, ", "))
	}

	config := NewSiteConfig()
	if err := config.LoadConfig(configFile); err != nil {
		return nil, err
	}
	if !config.Loaded {
		return nil, fmt.Errorf("site configuration %q not found", configFile)
	}

	if err := config.ApplyEnvironment(); err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		logrus.Warningf("Site configuration schema validation: %v", err)
	}

	return config, nil
}
