package url_helpers

import (
	"regexp"
)

var scrubRegexp = regexp.MustCompile(`(?im)([\?&]((?:private|personal|job)[\-_](?:access[\-_])?token)|X-AMZ-Signature)=[^&\s]*`)

// ScrubSecrets replaces the content of any sensitive query string parameters
// in an URL with `[FILTERED]`. Self-hosted release endpoints are often passed
// around with access tokens attached.
func ScrubSecrets(url string) string {
	return scrubRegexp.ReplaceAllString(url, "$1=[FILTERED]")
}
