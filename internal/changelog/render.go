package changelog

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/internal/dates"
	"github.com/danielolaszy/changelog/internal/github"
	"github.com/danielolaszy/changelog/internal/logging"
	"github.com/danielolaszy/changelog/pkg/models"
)

// Placeholder values rendered when data is missing or hidden.
const (
	Unknown       = "Unknown"
	NoDescription = "No description available"
	NotDisplayed  = "Not Displayed"
)

// Fetcher reads listing and commit data from the hosting platform.
type Fetcher interface {
	ListItems(ctx context.Context, repo models.Repository, kind models.Kind) ([]models.ListingItem, error)
	ListCommits(ctx context.Context, repo models.Repository, ref string) ([]models.CommitRef, error)
	GetCommitDetail(ctx context.Context, repo models.Repository, sha string) (models.CommitRef, error)
}

// Renderer builds changelog fragments. It holds no per-invocation state and
// may be reused across directives.
type Renderer struct {
	fetcher  Fetcher
	domain   string
	webURL   string
	location *time.Location
}

// NewRenderer creates a Renderer that fetches through f and formats dates in
// the configured zone.
func NewRenderer(f Fetcher, cfg *config.Config) *Renderer {
	return &Renderer{
		fetcher:  f,
		domain:   cfg.GitHub.Domain,
		webURL:   cfg.GitHub.WebURL(),
		location: cfg.Changelog.Location,
	}
}

// Fetch renders the changelog for req. Failures are logged and returned as a
// fallback string starting with FallbackPrefix; Fetch never fails.
func (r *Renderer) Fetch(ctx context.Context, req Request) string {
	out, err := r.Render(ctx, req)
	if err != nil {
		classified := Classify(err)
		logging.Error("error fetching changelog",
			"repository", req.RepositoryURL,
			"kind", classified.Kind.String(),
			"error", classified.Err)
		return classified.Fallback()
	}
	return out
}

// Render builds the HTML fragment for req. Errors are *Error values.
// A repository without tags or releases yields an empty fragment.
func (r *Renderer) Render(ctx context.Context, req Request) (string, error) {
	repo, err := github.ParseRepositoryURL(req.RepositoryURL, r.domain)
	if err != nil {
		return "", &Error{Kind: Other, Err: err}
	}

	items, err := r.fetcher.ListItems(ctx, repo, req.Kind)
	if err != nil {
		return "", Classify(err)
	}
	logging.Debug("fetched listing", "repository", repo.FullName(), "kind", req.Kind, "count", len(items))

	var lines []string
	for _, item := range items {
		entry, err := r.renderItem(ctx, repo, req, item)
		if err != nil {
			return "", Classify(err)
		}
		lines = append(lines, entry...)
	}

	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) renderItem(ctx context.Context, repo models.Repository, req Request, item models.ListingItem) ([]string, error) {
	logging.Debug("processing item", "kind", req.Kind, "version", item.Version)

	base := r.webURL + "/" + repo.FullName()

	link := item.HTMLURL
	switch {
	case req.Kind == models.KindTag:
		link = base + "/tree/" + item.Version
	case link == "":
		link = base + "/releases/tag/" + item.Version
	}

	commitsText := NotDisplayed
	tagDate := Unknown
	if req.ShowCommits || (req.Kind == models.KindTag && req.ShowDate) {
		commits, err := r.fetcher.ListCommits(ctx, repo, item.Version)
		if err != nil {
			return nil, err
		}
		logging.Debug("fetched commits for item", "kind", req.Kind, "version", item.Version, "count", len(commits))

		if len(commits) > 0 && req.ShowDate && commits[0].AuthorDate != "" {
			tagDate = dates.Format(commits[0].AuthorDate, r.location)
		}
		if req.ShowCommits {
			commitsText = commitLinks(base, commits)
		}
	}

	entry := []string{
		fmt.Sprintf(`<h3 class="changelog_title"><a href="%s">%s</a></h3>`,
			html.EscapeString(link), html.EscapeString(item.Version)),
	}

	if req.ShowDate {
		if req.Kind == models.KindRelease {
			entry = append(entry, entryLine("date", r.releaseDate(item)))
		} else {
			entry = append(entry, entryLine("date", tagDate))
		}
	}

	if req.ShowTitle && item.HasName {
		entry = append(entry, entryLine("title", html.EscapeString(item.Name)))
	}

	if req.ShowDesc {
		desc, err := r.description(ctx, repo, req.Kind, item)
		if err != nil {
			return nil, err
		}
		entry = append(entry, entryLine("desc", html.EscapeString(desc)))
	}

	entry = append(entry, entryLine("commits", commitsText))

	return entry, nil
}

func (r *Renderer) releaseDate(item models.ListingItem) string {
	raw := item.PublishedAt
	if raw == "" {
		raw = item.CreatedAt
	}
	if raw == "" {
		return Unknown
	}
	return dates.Format(raw, r.location)
}

func (r *Renderer) description(ctx context.Context, repo models.Repository, kind models.Kind, item models.ListingItem) (string, error) {
	text := item.Body
	if kind == models.KindTag {
		if item.CommitSHA == "" {
			return "", fmt.Errorf("tag %s of %s has no commit sha: %w", item.Version, repo.FullName(), github.ErrUnexpectedShape)
		}
		commit, err := r.fetcher.GetCommitDetail(ctx, repo, item.CommitSHA)
		if err != nil {
			return "", err
		}
		text = commit.Message
	}

	if desc := strings.TrimSpace(text); desc != "" {
		return desc, nil
	}
	return NoDescription, nil
}

func commitLinks(base string, commits []models.CommitRef) string {
	links := make([]string, len(commits))
	for i, c := range commits {
		links[i] = fmt.Sprintf(`<a href="%s/commit/%s">%s</a>`,
			html.EscapeString(base), html.EscapeString(c.SHA), html.EscapeString(c.ShortSHA()))
	}
	return strings.Join(links, ", ")
}

// entryLine renders one labelled paragraph. value must already be escaped.
func entryLine(label, value string) string {
	return fmt.Sprintf(`<p class="changelog_entries"><strong>%s:</strong> %s</p>`, label, value)
}
