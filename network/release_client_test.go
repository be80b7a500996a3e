//go:build !integration

package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	tests := map[string]struct {
		handler         http.HandlerFunc
		expectedVersion string
		expectedError   string
	}{
		"redirect with version tag": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "https://gitlab.com/docmill/docmill/-/releases/v9.5.3", http.StatusFound)
			},
			expectedVersion: "9.5.3",
		},
		"redirect without v prefix": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "https://gitlab.com/docmill/docmill/-/releases/9.2.0", http.StatusMovedPermanently)
			},
			expectedVersion: "9.2.0",
		},
		"no redirect": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			expectedError: "endpoint did not redirect",
		},
		"not found": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedError: "unexpected status 404",
		},
		"redirect without location": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusFound)
			},
			expectedError: "endpoint did not redirect",
		},
		"unparsable version": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "https://gitlab.com/docmill/docmill/-/releases/latest", http.StatusFound)
			},
			expectedError: "parsing release version",
		},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewReleaseClient(server.URL)
			latest, err := client.LatestVersion(context.Background())
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedVersion, latest.String())
		})
	}
}

func TestLatestVersionRetriesTransientFailures(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "https://gitlab.com/docmill/docmill/-/releases/v9.5.3", http.StatusFound)
	}))
	defer server.Close()

	client := NewReleaseClient(server.URL)
	latest, err := client.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9.5.3", latest.String())
	assert.EqualValues(t, 3, atomic.LoadInt64(&attempts))
}

func TestLatestVersionSendsUserAgent(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		http.Redirect(w, r, "https://gitlab.com/docmill/docmill/-/releases/v9.5.3", http.StatusFound)
	}))
	defer server.Close()

	client := NewReleaseClient(server.URL)
	_, err := client.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Contains(t, userAgent, "docmill-support")
}

func TestParseReleaseVersion(t *testing.T) {
	tests := map[string]struct {
		location        string
		expectedVersion string
		expectedError   bool
	}{
		"release URL with tag": {
			location:        "https://gitlab.com/docmill/docmill/-/releases/v9.5.3",
			expectedVersion: "9.5.3",
		},
		"release URL without v prefix": {
			location:        "https://gitlab.com/docmill/docmill/-/releases/9.2.0",
			expectedVersion: "9.2.0",
		},
		"bare version": {
			location:        "v1.0.0",
			expectedVersion: "1.0.0",
		},
		"not a version": {
			location:      "https://gitlab.com/docmill/docmill/-/releases/latest",
			expectedError: true,
		},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			parsed, err := ParseReleaseVersion(tt.location)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedVersion, parsed.String())
		})
	}
}
