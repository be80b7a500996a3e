package log

import (
	"github.com/sirupsen/logrus"

	url_helpers "gitlab.com/docmill/docmill-support/helpers/url"
)

// ScrubSecretsHook removes sensitive query string values from logged
// messages. Release endpoints may point at private instances and carry
// access tokens, and everything this tool prints tends to end up pasted
// into public bug reports.
type ScrubSecretsHook struct{}

func (s *ScrubSecretsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (s *ScrubSecretsHook) Fire(entry *logrus.Entry) error {
	entry.Message = url_helpers.ScrubSecrets(entry.Message)
	return nil
}

func AddScrubSecretsLogHook(logger *logrus.Logger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	logger.AddHook(new(ScrubSecretsHook))
}
