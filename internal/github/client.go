// Package github provides functionality for reading tag, release and commit
// metadata from the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

// ErrUnexpectedShape is wrapped by errors for payloads that decoded but lack
// a field the changelog depends on.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// Option configures the client.
type Option func(*Client) error

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(rawURL string) Option {
	return func(c *Client) error {
		u, err := url.Parse(strings.TrimSuffix(rawURL, "/") + "/")
		if err != nil {
			return fmt.Errorf("invalid github api url: %w", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewClient creates a GitHub API client from the injected configuration.
// Credentials are sent as-is; empty values are not rejected.
func NewClient(cfg config.GitHubConfig, opts ...Option) (*Client, error) {
	httpClient := newHTTPClient(cfg)
	client := github.NewClient(httpClient)

	apiURL := cfg.APIURL()
	if apiURL != client.BaseURL.String() {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	c := &Client{client: client}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	logging.Debug("github configuration",
		"api_url", c.client.BaseURL.String(),
		"auth_mode", cfg.AuthMode,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return c, nil
}

func newHTTPClient(cfg config.GitHubConfig) *http.Client {
	if cfg.AuthMode == config.AuthToken {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		return oauth2.NewClient(context.Background(), ts)
	}

	tp := &github.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}
	return tp.Client()
}

// ParseRepositoryURL extracts the owner and repository name from a web URL
// such as "https://github.com/owner/repo". Everything after the first
// "{domain}/" is taken as the path; trailing segments and a ".git" suffix are ignored.
func ParseRepositoryURL(rawURL, domain string) (models.Repository, error) {
	if domain == "" {
		domain = config.DefaultDomain
	}
	marker := domain + "/"
	i := strings.Index(rawURL, marker)
	if i < 0 {
		return models.Repository{}, fmt.Errorf("repository URL %q does not reference %s", rawURL, domain)
	}

	path := strings.Trim(rawURL[i+len(marker):], "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return models.Repository{}, fmt.Errorf("invalid repository format: %s, expected format: owner/repo", path)
	}

	return models.Repository{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

// ListItems lists the tags or releases of a repository in the API's default
// order (newest first). Only the first page is read.
func (c *Client) ListItems(ctx context.Context, repo models.Repository, kind models.Kind) ([]models.ListingItem, error) {
	if kind == models.KindRelease {
		return c.listReleases(ctx, repo)
	}
	return c.listTags(ctx, repo)
}

// Timestamps stay as raw strings so a malformed date only affects the line
// that displays it.
type releasePayload struct {
	TagName     *string `json:"tag_name,omitempty"`
	Name        *string `json:"name,omitempty"`
	HTMLURL     *string `json:"html_url,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty"`
	Body        *string `json:"body,omitempty"`
}

type commitAuthorPayload struct {
	Date *string `json:"date,omitempty"`
}

type commitDataPayload struct {
	Author  *commitAuthorPayload `json:"author,omitempty"`
	Message *string              `json:"message,omitempty"`
}

type commitPayload struct {
	SHA    *string            `json:"sha,omitempty"`
	Commit *commitDataPayload `json:"commit,omitempty"`
}

func (c *Client) get(ctx context.Context, path string, v interface{}) (*github.Response, error) {
	req, err := c.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(ctx, req, v)
}

func (c *Client) listReleases(ctx context.Context, repo models.Repository) ([]models.ListingItem, error) {
	var releases []*releasePayload
	resp, err := c.get(ctx, fmt.Sprintf("repos/%v/%v/releases", repo.Owner, repo.Name), &releases)
	logging.Debug("listed releases",
		"repository", repo.FullName(),
		"status_code", statusCode(resp))
	if err != nil {
		return nil, fmt.Errorf("failed to list releases for %s: %w", repo.FullName(), err)
	}

	items := make([]models.ListingItem, 0, len(releases))
	for _, r := range releases {
		if r == nil || r.TagName == nil {
			return nil, fmt.Errorf("release of %s has no tag_name: %w", repo.FullName(), ErrUnexpectedShape)
		}
		items = append(items, models.ListingItem{
			Name:        deref(r.Name),
			HasName:     r.Name != nil,
			Version:     *r.TagName,
			HTMLURL:     deref(r.HTMLURL),
			PublishedAt: deref(r.PublishedAt),
			CreatedAt:   deref(r.CreatedAt),
			Body:        deref(r.Body),
		})
	}

	logging.Debug("fetched releases", "repository", repo.FullName(), "count", len(items))
	return items, nil
}

func (c *Client) listTags(ctx context.Context, repo models.Repository) ([]models.ListingItem, error) {
	tags, resp, err := c.client.Repositories.ListTags(ctx, repo.Owner, repo.Name, nil)
	logging.Debug("listed tags",
		"repository", repo.FullName(),
		"status_code", statusCode(resp))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for %s: %w", repo.FullName(), err)
	}

	items := make([]models.ListingItem, 0, len(tags))
	for _, t := range tags {
		if t.Name == nil {
			return nil, fmt.Errorf("tag of %s has no name: %w", repo.FullName(), ErrUnexpectedShape)
		}
		items = append(items, models.ListingItem{
			Name:      t.GetName(),
			HasName:   true,
			Version:   t.GetName(),
			CommitSHA: t.GetCommit().GetSHA(),
		})
	}

	logging.Debug("fetched tags", "repository", repo.FullName(), "count", len(items))
	return items, nil
}

// ListCommits lists the commits reachable from ref, newest first.
// Only the first page is read.
func (c *Client) ListCommits(ctx context.Context, repo models.Repository, ref string) ([]models.CommitRef, error) {
	path := fmt.Sprintf("repos/%v/%v/commits?%s", repo.Owner, repo.Name, url.Values{"sha": {ref}}.Encode())
	var commits []*commitPayload
	resp, err := c.get(ctx, path, &commits)
	logging.Debug("listed commits",
		"repository", repo.FullName(),
		"ref", ref,
		"status_code", statusCode(resp))
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for %s at %s: %w", repo.FullName(), ref, err)
	}

	refs := make([]models.CommitRef, 0, len(commits))
	for _, commit := range commits {
		if commit == nil || commit.SHA == nil {
			return nil, fmt.Errorf("commit listing for %s has an entry without sha: %w", repo.FullName(), ErrUnexpectedShape)
		}
		refs = append(refs, commit.toCommitRef())
	}

	logging.Debug("fetched commits", "repository", repo.FullName(), "ref", ref, "count", len(refs))
	return refs, nil
}

// GetCommitDetail fetches a single commit.
func (c *Client) GetCommitDetail(ctx context.Context, repo models.Repository, sha string) (models.CommitRef, error) {
	commit := new(commitPayload)
	resp, err := c.get(ctx, fmt.Sprintf("repos/%v/%v/commits/%v", repo.Owner, repo.Name, sha), commit)
	logging.Debug("fetched commit",
		"repository", repo.FullName(),
		"sha", sha,
		"status_code", statusCode(resp))
	if err != nil {
		return models.CommitRef{}, fmt.Errorf("failed to get commit %s of %s: %w", sha, repo.FullName(), err)
	}

	if commit.Commit == nil || commit.Commit.Message == nil {
		return models.CommitRef{}, fmt.Errorf("commit %s of %s has no message: %w", sha, repo.FullName(), ErrUnexpectedShape)
	}

	return commit.toCommitRef(), nil
}

func (p *commitPayload) toCommitRef() models.CommitRef {
	ref := models.CommitRef{SHA: deref(p.SHA)}
	if p.Commit != nil {
		ref.Message = deref(p.Commit.Message)
		if p.Commit.Author != nil {
			ref.AuthorDate = deref(p.Commit.Author.Date)
		}
	}
	return ref
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
