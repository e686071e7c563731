package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// prURLRe matches https://github.com/owner/repo/pull/123, with an optional
// trailing path or fragment.
var prURLRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// ParsePRURL extracts owner, repo, and PR number from a GitHub pull request
// URL.
func ParsePRURL(url string) (owner, repo string, number int, err error) {
	m := prURLRe.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid GitHub PR URL %q: expected https://github.com/owner/repo/pull/123", url)
	}
	number, err = strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number in %q: %w", url, err)
	}
	return m[1], m[2], number, nil
}

// Client provides access to the GitHub REST API. A token is optional; without
// one, requests run against the unauthenticated rate limit.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a GitHub client. The token is read from GITHUB_TOKEN and
// the API base URL may be overridden via GITHUB_API_URL.
func NewClient() *Client {
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		token:   os.Getenv("GITHUB_TOKEN"),
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// PR holds the pull request metadata the report header needs.
type PR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	body, err := c.get(ctx, c.prURL(owner, repo, prNumber), "application/vnd.github.v3.diff", owner, repo, prNumber)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetPR fetches pull request metadata.
func (c *Client) GetPR(ctx context.Context, owner, repo string, prNumber int) (*PR, error) {
	body, err := c.get(ctx, c.prURL(owner, repo, prNumber), "application/vnd.github.v3+json", owner, repo, prNumber)
	if err != nil {
		return nil, err
	}
	var pr PR
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("parsing PR response: %w", err)
	}
	return &pr, nil
}

func (c *Client) prURL(owner, repo string, prNumber int) string {
	return fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
}

func (c *Client) get(ctx context.Context, url, accept, owner, repo string, prNumber int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching PR: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case 200:
		return body, nil
	case 404:
		return nil, fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
	case 401, 403:
		return nil, fmt.Errorf("authentication failed: %s", strings.TrimSpace(string(body)))
	default:
		return nil, fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
