// Package markdown converts documents written in a small Markdown dialect
// into an HTML node tree.
//
// The dialect has paragraphs, ATX headings, fenced code blocks, blockquotes,
// and flat ordered and unordered lists. Inline text supports bold (**),
// italic (_), code (`), links and images. Emphasis does not nest.
package markdown

import (
	"strings"

	"github.com/gerunddev/mdsite/internal/htmlnode"
)

// Assemble converts a whole document into a div containing one node per block
func Assemble(document string) (htmlnode.Node, error) {
	blocks := Segment(document)

	root := htmlnode.NewParent("div")
	for _, block := range blocks {
		node, err := Build(block, Classify(block))
		if err != nil {
			return nil, err
		}
		root.Append(node)
	}

	return root, nil
}

// ToHTML assembles a document and renders it
func ToHTML(document string) (string, error) {
	node, err := Assemble(document)
	if err != nil {
		return "", err
	}
	return node.ToHTML()
}

// ExtractTitle returns the text of the first "# " line of the document
// outside fenced code
func ExtractTitle(document string) (string, error) {
	inFence := false
	for _, line := range strings.Split(document, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, Fence) {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:]), nil
		}
	}
	return "", ErrNoTitle
}
