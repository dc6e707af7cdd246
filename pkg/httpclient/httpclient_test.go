package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSetsUserAgent(t *testing.T) {
	var gotUA, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv("GITHUB_TOKEN", "ghp_testtoken123")

	resp, err := New().Get(server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, UserAgent)
	}
	// httptest URLs are not GitHub hosts
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestNewKeepsExplicitUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("User-Agent", "custom/1.0")

	resp, err := New().Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if gotUA != "custom/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom/1.0")
	}
}

func TestIsGitHubURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/waf-project/waf/releases/download/waf-2.0.0/waf-2.0.0", true},
		{"https://raw.githubusercontent.com/owner/repo/main/waf", true},
		{"http://ftp.waf.io/pub/release/waf-1.8.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := isGitHubURL(tt.url); got != tt.want {
				t.Errorf("isGitHubURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestTransportSendsTokenToGitHubMirrors(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_testtoken123")

	tests := []struct {
		url      string
		wantAuth string
	}{
		{"https://github.com/waf-project/waf/releases/download/waf-1.8.1/waf-1.8.1", "Bearer ghp_testtoken123"},
		{"http://ftp.waf.io/pub/release/waf-1.8.1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			var gotAuth string
			tr := &transport{Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				gotAuth = req.Header.Get("Authorization")
				return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
			})}
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := (&http.Client{Transport: tr}).Do(req)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			resp.Body.Close()

			if gotAuth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", gotAuth, tt.wantAuth)
			}
			if req.Header.Get("Authorization") != "" {
				t.Error("caller's request was modified")
			}
		})
	}
}
