package directive

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Syntax is the markup flavour a block was written in.
type Syntax int

const (
	// RST is a reStructuredText block:
	//
	//	.. changelog::
	//	   :repo: https://github.com/owner/repo
	//	   :kind: release
	RST Syntax = iota
	// Markdown is a fenced block with a YAML body:
	//
	//	```changelog
	//	repo: https://github.com/owner/repo
	//	kind: release
	//	```
	Markdown
)

// Block is one directive occurrence in a document.
type Block struct {
	Syntax Syntax
	// Start and End are byte offsets of the block, End exclusive.
	Start   int
	End     int
	Options map[string]string
	// Err is set when the block body could not be parsed.
	Err error
}

var (
	rstStart   = regexp.MustCompile(`^([ \t]*)\.\.[ \t]+` + Name + `::[ \t]*$`)
	rstOption  = regexp.MustCompile(`^([ \t]+):([A-Za-z][A-Za-z0-9_-]*):(?:[ \t]+(.*?))?[ \t]*$`)
	fenceStart = regexp.MustCompile("^[ \t]*(```+|~~~+)[ \t]*" + Name + "[ \t]*$")
)

// Scan finds every directive block in doc, in document order.
func Scan(doc string) []Block {
	lines := strings.SplitAfter(doc, "\n")

	var blocks []Block
	offset := 0
	for i := 0; i < len(lines); {
		line := strings.TrimRight(lines[i], "\r\n")

		if m := rstStart.FindStringSubmatch(line); m != nil {
			block, consumed := scanRST(lines[i:], offset, len(m[1]))
			blocks = append(blocks, block)
			offset = block.End
			i += consumed
			continue
		}

		if m := fenceStart.FindStringSubmatch(line); m != nil {
			if block, consumed, ok := scanFence(lines[i:], offset, m[1]); ok {
				blocks = append(blocks, block)
				offset = block.End
				i += consumed
				continue
			}
		}

		offset += len(lines[i])
		i++
	}

	return blocks
}

// scanRST consumes the directive line and the option lines indented deeper
// than it.
func scanRST(lines []string, start, indent int) (Block, int) {
	block := Block{Syntax: RST, Start: start, Options: map[string]string{}}

	end := start + len(lines[0])
	n := 1
	for ; n < len(lines); n++ {
		m := rstOption.FindStringSubmatch(strings.TrimRight(lines[n], "\r\n"))
		if m == nil || len(m[1]) <= indent {
			break
		}
		block.Options[m[2]] = m[3]
		end += len(lines[n])
	}

	block.End = end
	return block, n
}

// scanFence consumes a fenced block up to its closing fence. Unterminated
// fences are not blocks.
func scanFence(lines []string, start int, fence string) (Block, int, bool) {
	var body strings.Builder
	end := start + len(lines[0])

	for n := 1; n < len(lines); n++ {
		end += len(lines[n])
		line := strings.TrimSpace(lines[n])
		if strings.HasPrefix(line, fence[:3]) && strings.Trim(line, fence[:1]) == "" && len(line) >= len(fence) {
			block := Block{Syntax: Markdown, Start: start, End: end}
			block.Options, block.Err = decodeYAMLOptions(body.String())
			return block, n + 1, true
		}
		body.WriteString(lines[n])
	}

	return Block{}, 0, false
}

func decodeYAMLOptions(body string) (map[string]string, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("parsing options: %w", err)
	}

	opts := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			opts[k] = ""
			continue
		}
		opts[k] = fmt.Sprint(v)
	}
	return opts, nil
}

// Expand returns doc with every directive block replaced by its rendered
// output. Text outside blocks is left untouched. A block that ended with a
// newline is replaced by output that ends with one.
func (d *Directive) Expand(ctx context.Context, doc string) string {
	blocks := Scan(doc)
	if len(blocks) == 0 {
		return doc
	}

	var b strings.Builder
	last := 0
	for _, block := range blocks {
		b.WriteString(doc[last:block.Start])

		var node Node
		if block.Err != nil {
			node = invalid(block.Err)
		} else {
			node = d.Run(ctx, block.Options)
		}

		b.WriteString(node.HTML())
		if strings.HasSuffix(doc[block.Start:block.End], "\n") {
			b.WriteString("\n")
		}
		last = block.End
	}
	b.WriteString(doc[last:])

	return b.String()
}
