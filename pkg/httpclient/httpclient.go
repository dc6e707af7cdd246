package httpclient

import (
	"net/http"
	"os"
	"strings"
)

// UserAgent is sent with every request made through New.
var UserAgent = "wafstrap"

// New creates an HTTP client for release downloads.
// It sets the User-Agent header and, for GitHub-hosted mirrors, adds the
// token from the GITHUB_TOKEN environment variable if available.
func New() *http.Client {
	return &http.Client{
		Transport: &transport{
			Base: http.DefaultTransport,
		},
	}
}

// transport is a RoundTripper that decorates outgoing requests
type transport struct {
	Base http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req2 := req.Clone(req.Context())

	if req2.Header.Get("User-Agent") == "" {
		req2.Header.Set("User-Agent", UserAgent)
	}
	if isGitHubURL(req2.URL.String()) {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			req2.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return t.Base.RoundTrip(req2)
}

// isGitHubURL checks if a URL is a GitHub URL
func isGitHubURL(url string) bool {
	return strings.Contains(url, "github.com") || strings.Contains(url, "githubusercontent.com")
}
