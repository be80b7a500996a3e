package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"

	"gitlab.com/docmill/docmill-support/common"
)

// ErrDevelopmentBuild is returned by CheckVersion when the running binary
// carries no release version to compare against.
var ErrDevelopmentBuild = errors.New("development build")

// Severity of a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a project customization that gets in the way of a
// reproducible bug report.
type Violation struct {
	Rule     string
	Detail   string
	Severity Severity
}

const (
	RuleThemeCustomDir  = "theme.custom_dir"
	RuleHooks           = "hooks"
	RuleExtraCSS        = "extra_css"
	RuleExtraJavascript = "extra_javascript"
)

// CustomizationRules lists every rule CheckCustomizations applies, in the
// order they are checked.
var CustomizationRules = []string{RuleThemeCustomDir, RuleHooks, RuleExtraCSS, RuleExtraJavascript}

// ReleaseResolver resolves the latest published release version.
type ReleaseResolver interface {
	LatestVersion(ctx context.Context) (*version.Version, error)
}

// VersionStatus is the outcome of comparing the running version against the
// latest release.
type VersionStatus struct {
	Current *version.Version
	Latest  *version.Version
}

// UpToDate reports whether the running version is the latest release or
// newer. Pre-release builds of an upcoming version count as up to date.
func (s *VersionStatus) UpToDate() bool {
	return !s.Current.LessThan(s.Latest)
}

// CheckVersion compares the running version against the latest release
// published at the configured endpoint.
func CheckVersion(ctx context.Context, resolver ReleaseResolver) (*VersionStatus, error) {
	current, err := version.NewVersion(common.AppVersion.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %q carries no release version", ErrDevelopmentBuild, common.AppVersion.Version)
	}

	latest, err := resolver.LatestVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving latest release: %w", err)
	}

	return &VersionStatus{Current: current, Latest: latest}, nil
}

// CheckCustomizations inspects the site configuration for customizations
// that alter behavior in ways a bug report cannot reproduce. Theme overrides
// and hooks block the report, extra stylesheets and scripts are only
// reported.
func CheckCustomizations(config *common.SiteConfig) []Violation {
	var violations []Violation

	if config.Theme.CustomDir != "" {
		violations = append(violations, Violation{
			Rule:     RuleThemeCustomDir,
			Detail:   "Please remove 'custom_dir' setting.",
			Severity: SeverityError,
		})
	}

	if len(config.Hooks) > 0 {
		violations = append(violations, Violation{
			Rule:     RuleHooks,
			Detail:   "Please remove 'hooks' setting.",
			Severity: SeverityError,
		})
	}

	if len(config.ExtraCSS) > 0 {
		violations = append(violations, Violation{
			Rule:     RuleExtraCSS,
			Detail:   "Please remove 'extra_css' setting.",
			Severity: SeverityWarning,
		})
	}

	if len(config.ExtraJavascript) > 0 {
		violations = append(violations, Violation{
			Rule:     RuleExtraJavascript,
			Detail:   "Please remove 'extra_javascript' setting.",
			Severity: SeverityWarning,
		})
	}

	return violations
}

// HasBlocking reports whether any violation is severe enough to stop the
// bundle.
func HasBlocking(violations []Violation) bool {
	for _, violation := range violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AsError folds blocking violations into a single error, nil when none
// block.
func AsError(violations []Violation) error {
	var result *multierror.Error
	for _, violation := range violations {
		if violation.Severity == SeverityError {
			result = multierror.Append(result, fmt.Errorf("%s: customization not supported in bug reports", violation.Rule))
		}
	}

	return result.ErrorOrNil()
}
