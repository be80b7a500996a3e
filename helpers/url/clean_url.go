package url_helpers

import "net/url"

// CleanURL strips userinfo, query and fragment from an URL so it is safe to
// log or embed in a report.
func CleanURL(value string) (ret string) {
	u, err := url.Parse(value)
	if err != nil {
		return
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
