// Package changelog turns tag and release listings into HTML changelog fragments.
package changelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielolaszy/changelog/pkg/models"
)

// Directive option names.
const (
	OptionRepo    = "repo"
	OptionKind    = "kind"
	OptionTitle   = "title"
	OptionDesc    = "desc"
	OptionCommits = "commits"
	OptionDate    = "date"
)

// OptionNames lists every option the directive accepts, in documentation order.
var OptionNames = []string{OptionRepo, OptionKind, OptionTitle, OptionDesc, OptionCommits, OptionDate}

// Request is one directive invocation.
type Request struct {
	RepositoryURL string
	Kind          models.Kind
	ShowTitle     bool
	ShowDesc      bool
	ShowCommits   bool
	ShowDate      bool
}

// DefaultRequest returns a request with every option at its default.
func DefaultRequest() Request {
	return Request{
		Kind:        models.KindTag,
		ShowTitle:   true,
		ShowDesc:    true,
		ShowCommits: true,
		ShowDate:    true,
	}
}

// HasRepository reports whether a repository URL was given.
func (r Request) HasRepository() bool {
	return r.RepositoryURL != ""
}

// ParseOptions builds a Request from raw directive options. Option names are
// case-insensitive and may appear only once. Unknown names and unknown kinds
// are rejected; a missing repo is not an error.
func ParseOptions(opts map[string]string) (Request, error) {
	req := DefaultRequest()

	rawNames := make([]string, 0, len(opts))
	for rawName := range opts {
		rawNames = append(rawNames, rawName)
	}
	sort.Strings(rawNames)

	var unknown []string
	seen := make(map[string]string, len(opts))
	for _, rawName := range rawNames {
		name := strings.ToLower(strings.TrimSpace(rawName))
		if prev, ok := seen[name]; ok {
			return Request{}, fmt.Errorf("option %s given more than once (%q and %q)", name, prev, rawName)
		}
		seen[name] = rawName

		value := strings.TrimSpace(opts[rawName])
		switch name {
		case OptionRepo:
			req.RepositoryURL = value
		case OptionKind:
			kind, err := ParseKind(value)
			if err != nil {
				return Request{}, err
			}
			req.Kind = kind
		case OptionTitle:
			req.ShowTitle = ParseBool(value)
		case OptionDesc:
			req.ShowDesc = ParseBool(value)
		case OptionCommits:
			req.ShowCommits = ParseBool(value)
		case OptionDate:
			req.ShowDate = ParseBool(value)
		default:
			unknown = append(unknown, rawName)
		}
	}

	if len(unknown) > 0 {
		return Request{}, fmt.Errorf("unknown option(s) %s, expected one of %s",
			strings.Join(unknown, ", "), strings.Join(OptionNames, ", "))
	}

	return req, nil
}

// ParseKind accepts "tag" or "release" in any case.
func ParseKind(s string) (models.Kind, error) {
	switch models.Kind(strings.ToLower(strings.TrimSpace(s))) {
	case models.KindTag:
		return models.KindTag, nil
	case models.KindRelease:
		return models.KindRelease, nil
	default:
		return "", fmt.Errorf("invalid kind %q, expected %q or %q", s, models.KindTag, models.KindRelease)
	}
}

// ParseBool treats "true", "1", "yes" and "on" (any case) as true and
// everything else as false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
