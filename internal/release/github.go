package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Repository returns the sample repository name for the selector, e.g.
// "puzzle-framework-sample" or "puzzle-framework-lite-sample".
func (c *Client) Repository(sel Selector) string {
	app := c.project
	if sel.Lite {
		app += "-lite"
	}
	return app + "-sample"
}

// URL builds the releases API URL for the selector.
func (c *Client) URL(sel Selector) string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/%s", c.apiBase, c.owner, c.Repository(sel), versionPath(sel))
}

func versionPath(sel Selector) string {
	if sel.IsLatest() {
		return Latest
	}
	return "tags/v" + sel.Version
}

// Fetch issues a single metadata request for the selected release.
func (c *Client) Fetch(ctx context.Context, sel Selector) (*Release, error) {
	url := c.URL(sel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("release not found at %s", url)
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("GitHub API rate limit exceeded. Set github_token for higher limits")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("parsing release JSON: %w", err)
	}
	if rel.ZipballURL == "" {
		return nil, fmt.Errorf("release %s has no zipball_url", rel.TagName)
	}
	return &rel, nil
}
