package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielolaszy/changelog/internal/config"
	"github.com/danielolaszy/changelog/pkg/models"
	gh "github.com/google/go-github/v41/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRepo = models.Repository{Owner: "owner", Name: "repo"}

func newTestClient(t *testing.T, cfg config.GitHubConfig, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(cfg, WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestParseRepositoryURL(t *testing.T) {
	testCases := []struct {
		name      string
		url       string
		domain    string
		want      models.Repository
		wantError string
	}{
		{
			name: "Plain URL",
			url:  "https://github.com/owner/repo",
			want: models.Repository{Owner: "owner", Name: "repo"},
		},
		{
			name: "Trailing slash and .git",
			url:  "https://github.com/owner/repo.git/",
			want: models.Repository{Owner: "owner", Name: "repo"},
		},
		{
			name: "Extra path segments ignored",
			url:  "https://github.com/owner/repo/tree/main",
			want: models.Repository{Owner: "owner", Name: "repo"},
		},
		{
			name:   "Enterprise domain",
			url:    "https://github.example.com/team/service",
			domain: "github.example.com",
			want:   models.Repository{Owner: "team", Name: "service"},
		},
		{
			name:      "Different host",
			url:       "https://gitlab.com/owner/repo",
			wantError: "does not reference github.com",
		},
		{
			name:      "Owner only",
			url:       "https://github.com/owner",
			wantError: "invalid repository format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRepositoryURL(tc.url, tc.domain)
			if tc.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewClientEnterpriseBaseURL(t *testing.T) {
	client, err := NewClient(config.GitHubConfig{Domain: "github.example.com", AuthMode: config.AuthBasic})
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3/", client.client.BaseURL.String())

	client, err = NewClient(config.GitHubConfig{Domain: "github.com", AuthMode: config.AuthBasic})
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", client.client.BaseURL.String())
}

func TestBasicAuthCredentials(t *testing.T) {
	cfg := config.GitHubConfig{Username: "octocat", Token: "test-token", AuthMode: config.AuthBasic}
	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "expected basic auth header")
		assert.Equal(t, "octocat", user)
		assert.Equal(t, "test-token", pass)
		w.Write([]byte(`[]`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindTag)
	require.NoError(t, err)
}

func TestEmptyCredentialsPassedThrough(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{AuthMode: config.AuthBasic}, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Empty(t, user)
		assert.Empty(t, pass)
		w.Write([]byte(`[]`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.NoError(t, err)
}

func TestTokenAuthMode(t *testing.T) {
	cfg := config.GitHubConfig{Token: "test-token", AuthMode: config.AuthToken}
	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindTag)
	require.NoError(t, err)
}

func TestListReleases(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/releases", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":           2,
				"tag_name":     "v1.1",
				"name":         "Second",
				"html_url":     "https://github.com/owner/repo/releases/tag/v1.1",
				"published_at": "2024-02-01T12:00:00Z",
				"created_at":   "2024-01-31T12:00:00Z",
				"body":         "  notes  ",
			},
			{
				"id":         1,
				"tag_name":   "v1.0",
				"html_url":   "https://github.com/owner/repo/releases/tag/v1.0",
				"created_at": "2024-01-02T10:00:00Z",
			},
		})
	})

	items, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.ListingItem{
		Name:        "Second",
		HasName:     true,
		Version:     "v1.1",
		HTMLURL:     "https://github.com/owner/repo/releases/tag/v1.1",
		PublishedAt: "2024-02-01T12:00:00Z",
		CreatedAt:   "2024-01-31T12:00:00Z",
		Body:        "  notes  ",
	}, items[0])

	assert.False(t, items[1].HasName)
	assert.Equal(t, "v1.0", items[1].Version)
	assert.Empty(t, items[1].PublishedAt)
	assert.Equal(t, "2024-01-02T10:00:00Z", items[1].CreatedAt)
	assert.Empty(t, items[1].Body)
}

func TestListReleasesKeepsRawTimestamps(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"tag_name":"v1.2","published_at":"garbage","created_at":"2024-01-02T10:00:00+02:00"},
			{"tag_name":"v1.1","published_at":"2024-01-02T10:00:00.5Z","created_at":null}
		]`))
	})

	items, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "garbage", items[0].PublishedAt)
	assert.Equal(t, "2024-01-02T10:00:00+02:00", items[0].CreatedAt)
	assert.Equal(t, "2024-01-02T10:00:00.5Z", items[1].PublishedAt)
	assert.Empty(t, items[1].CreatedAt)
}

func TestListReleasesMalformedJSON(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"tag_name":`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.Error(t, err)
}

func TestListReleasesMissingTagName(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"untagged"}]`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestListTags(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/tags", r.URL.Path)
		w.Write([]byte(`[{"name":"v2.0","commit":{"sha":"abcdef1234567890"}}]`))
	})

	items, err := client.ListItems(context.Background(), testRepo, models.KindTag)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ListingItem{
		Name:      "v2.0",
		HasName:   true,
		Version:   "v2.0",
		CommitSHA: "abcdef1234567890",
	}, items[0])
}

func TestListTagsMissingName(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"commit":{"sha":"abcdef1234567890"}}]`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindTag)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestListCommits(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/commits", r.URL.Path)
		assert.Equal(t, "v1.0", r.URL.Query().Get("sha"))
		w.Write([]byte(`[
			{"sha":"1111111aaaa","commit":{"author":{"date":"2024-01-02T10:00:00Z"},"message":"second"}},
			{"sha":"2222222bbbb","commit":{"author":{"date":"2024-01-01T10:00:00Z"},"message":"first"}}
		]`))
	})

	commits, err := client.ListCommits(context.Background(), testRepo, "v1.0")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, models.CommitRef{SHA: "1111111aaaa", AuthorDate: "2024-01-02T10:00:00Z", Message: "second"}, commits[0])
	assert.Equal(t, "2222222", commits[1].ShortSHA())
}

func TestListCommitsKeepsRawAuthorDate(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feature/x y", r.URL.Query().Get("sha"))
		w.Write([]byte(`[{"sha":"1111111aaaa","commit":{"author":{"date":"not a date"}}},{"sha":"2222222bbbb"}]`))
	})

	commits, err := client.ListCommits(context.Background(), testRepo, "feature/x y")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "not a date", commits[0].AuthorDate)
	assert.Equal(t, models.CommitRef{SHA: "2222222bbbb"}, commits[1])
}

func TestGetCommitDetail(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo/commits/abc123":
			w.Write([]byte(`{"sha":"abc123","commit":{"author":{"date":"2024-01-02T10:00:00Z"},"message":" release v1 \n"}}`))
		case "/repos/owner/repo/commits/nomessage":
			w.Write([]byte(`{"sha":"nomessage"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	commit, err := client.GetCommitDetail(context.Background(), testRepo, "abc123")
	require.NoError(t, err)
	assert.Equal(t, " release v1 \n", commit.Message)

	_, err = client.GetCommitDetail(context.Background(), testRepo, "nomessage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestNon2xxReturnsErrorResponse(t *testing.T) {
	client := newTestClient(t, config.GitHubConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := client.ListItems(context.Background(), testRepo, models.KindRelease)
	require.Error(t, err)

	var errResp *gh.ErrorResponse
	require.True(t, errors.As(err, &errResp))
	assert.Equal(t, http.StatusNotFound, errResp.Response.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "failed to list releases for owner/repo"))
}
