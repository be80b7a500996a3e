package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-http-utils/headers"
	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"

	"gitlab.com/docmill/docmill-support/common"
	"gitlab.com/docmill/docmill-support/helpers/retry"
	url_helpers "gitlab.com/docmill/docmill-support/helpers/url"
)

// ErrNoReleaseRedirect is returned when the endpoint answers with something
// other than a redirect to a release page.
var ErrNoReleaseRedirect = errors.New("endpoint did not redirect to a release")

// ReleaseClient resolves the latest published version from a permalink
// endpoint. The endpoint answers with a redirect to the release page, the
// version is carried entirely by the Location header so the response body is
// never needed.
type ReleaseClient struct {
	endpoint string
	client   *http.Client
}

func NewReleaseClient(endpoint string) *ReleaseClient {
	return &ReleaseClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: common.DefaultResolveTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// LatestVersion resolves the latest release version, retrying transient
// failures with backoff.
func (c *ReleaseClient) LatestVersion(ctx context.Context) (*version.Version, error) {
	logger := logrus.WithField("endpoint", url_helpers.CleanURL(c.endpoint))

	return retry.NewWithValue(func() (*version.Version, error) {
		return c.resolveLatest(ctx)
	}).
		WithMaxTries(common.ResolveRetries).
		WithBackoff(common.ResolveRetryMinBackoff, common.ResolveRetryMaxBackoff).
		WithLogrus(logger).
		RunValue()
}

func (c *ReleaseClient) resolveLatest(ctx context.Context) (*version.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NewRequest: %w", err)
	}
	req.Header.Set("User-Agent", common.AppVersion.UserAgent())

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting latest release: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if res.StatusCode < http.StatusMultipleChoices || res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNoReleaseRedirect, res.StatusCode)
	}

	location := res.Header.Get(headers.Location)
	if location == "" {
		return nil, ErrNoReleaseRedirect
	}

	return ParseReleaseVersion(location)
}

// ParseReleaseVersion extracts the version from a release URL. The last path
// segment carries the tag, with or without a leading "v".
func ParseReleaseVersion(location string) (*version.Version, error) {
	segment := location
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	segment = strings.TrimPrefix(segment, "v")

	parsed, err := version.NewVersion(segment)
	if err != nil {
		return nil, fmt.Errorf("parsing release version %q: %w", segment, err)
	}

	return parsed, nil
}
