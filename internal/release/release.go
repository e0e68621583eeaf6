package release

import (
	"net/http"
	"strings"
	"time"

	"github.com/spark-development/puzzle-cli/internal/branding"
)

const (
	// DefaultAPIBase is the public GitHub REST endpoint.
	DefaultAPIBase = "https://api.github.com"
	// Latest selects the most recent published release.
	Latest = "latest"

	defaultTimeout = 60 * time.Second
	userAgent      = "puzzle-cli"
)

// Release is the subset of a GitHub release the scaffolder needs.
type Release struct {
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name"`
	ZipballURL string    `json:"zipball_url"`
	TarballURL string    `json:"tarball_url"`
	HTMLURL    string    `json:"html_url"`
	Published  time.Time `json:"published_at"`
}

// Selector picks which sample repository and which release to fetch.
type Selector struct {
	Lite    bool
	Version string // "" or "latest" for the latest release, otherwise without the "v" prefix
}

// IsLatest reports whether the selector targets the latest release.
func (s Selector) IsLatest() bool {
	return s.Version == "" || s.Version == Latest
}

// Client queries the GitHub releases API.
type Client struct {
	httpClient *http.Client
	apiBase    string
	owner      string
	project    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIBase points the client at a GitHub Enterprise host or a mirror.
func WithAPIBase(base string) Option {
	return func(cl *Client) {
		if base != "" {
			cl.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithOwner overrides the GitHub organization hosting the samples.
func WithOwner(owner string) Option {
	return func(cl *Client) {
		if owner != "" {
			cl.owner = owner
		}
	}
}

// WithProject overrides the framework name the sample repositories derive from.
func WithProject(project string) Option {
	return func(cl *Client) {
		if project != "" {
			cl.project = project
		}
	}
}

// WithToken sets a GitHub token for higher rate limits.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// New creates a Client with branding defaults and the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiBase:    DefaultAPIBase,
		owner:      branding.GitHubOwner(),
		project:    branding.ProjectName(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient returns the client used for API calls, so archive downloads
// can share its transport settings.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}
