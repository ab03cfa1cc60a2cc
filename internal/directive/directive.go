// Package directive implements the "changelog" markup directive: option
// handling, the fallback outputs, and expansion of directive blocks found in
// documentation sources.
package directive

import (
	"context"
	"html"

	"github.com/danielolaszy/changelog/internal/changelog"
	"github.com/danielolaszy/changelog/internal/logging"
)

// Name is the directive name used in markup.
const Name = "changelog"

// NoRepositoryText is rendered when the directive has no repo option.
const NoRepositoryText = "No repository URL provided."

// InvalidPrefix starts the text rendered for a directive with bad options.
const InvalidPrefix = "Invalid changelog directive: "

// Renderer produces the changelog output for one request. It never fails;
// errors come back as fallback text.
type Renderer interface {
	Fetch(ctx context.Context, req changelog.Request) string
}

// Node is the output of one directive invocation.
type Node struct {
	// Raw marks Text as HTML to be inserted verbatim.
	Raw  bool
	Text string
}

// HTML returns the node as markup. Plain text becomes an escaped paragraph.
func (n Node) HTML() string {
	if n.Raw {
		return n.Text
	}
	return "<p>" + html.EscapeString(n.Text) + "</p>"
}

// Directive runs changelog directives against a Renderer.
type Directive struct {
	renderer Renderer
}

// New creates a Directive.
func New(r Renderer) *Directive {
	return &Directive{renderer: r}
}

// Run executes one directive invocation with the given raw options.
// Without a repo option no request is made.
func (d *Directive) Run(ctx context.Context, opts map[string]string) Node {
	req, err := changelog.ParseOptions(opts)
	if err != nil {
		return invalid(err)
	}

	if !req.HasRepository() {
		logging.Debug("changelog directive without repository")
		return Node{Text: NoRepositoryText}
	}

	return Node{Raw: true, Text: d.renderer.Fetch(ctx, req)}
}

func invalid(err error) Node {
	logging.Warn("invalid changelog directive", "error", err)
	return Node{Text: InvalidPrefix + err.Error()}
}
