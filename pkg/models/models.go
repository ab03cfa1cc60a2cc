// Package models defines data structures shared across the application.
package models

// Kind selects which listing endpoint a changelog is built from.
type Kind string

const (
	// KindTag lists repository tags.
	KindTag Kind = "tag"
	// KindRelease lists repository releases.
	KindRelease Kind = "release"
)

// Repository identifies a repository on the hosting platform.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns the repository in "owner/repo" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// ListingItem represents a single tag or release returned by the listing endpoint.
type ListingItem struct {
	// Name is the payload's name field. Only meaningful when HasName is true.
	Name string

	// HasName reports whether the payload carried a name field at all
	HasName bool

	// Version is the tag name for releases and the name for tags (e.g., "v1.0")
	Version string

	// HTMLURL is the canonical web page for a release. Empty for tags.
	HTMLURL string

	// PublishedAt is the release publish timestamp as YYYY-MM-DDTHH:MM:SSZ
	PublishedAt string

	// CreatedAt is the release creation timestamp as YYYY-MM-DDTHH:MM:SSZ
	CreatedAt string

	// Body is the release description
	Body string

	// CommitSHA is the commit a tag points at. Empty for releases.
	CommitSHA string
}

// CommitRef represents a commit as far as the changelog needs it.
type CommitRef struct {
	// SHA is the full commit hash
	SHA string

	// AuthorDate is the author timestamp as YYYY-MM-DDTHH:MM:SSZ, empty if unknown
	AuthorDate string

	// Message is the full commit message
	Message string
}

// ShortSHA returns the first seven characters of the commit hash.
func (c CommitRef) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}
