package markdown

import (
	"fmt"
	"strings"

	"github.com/gerunddev/mdsite/internal/htmlnode"
)

// Build converts one classified block into an HTML node
func Build(block string, kind BlockKind) (htmlnode.Node, error) {
	switch kind.Type {
	case Paragraph:
		return inlineParent("p", block)

	case Heading:
		return buildHeading(block, kind.Level)

	case CodeFence:
		if len(block) < 2*len(Fence) {
			return nil, fmt.Errorf("code block %q is shorter than its fences", block)
		}
		// Code is rendered byte for byte, without inline markup.
		code := block[len(Fence) : len(block)-len(Fence)]
		return htmlnode.NewParent("pre", htmlnode.NewLeaf("code", code)), nil

	case Quote:
		quote := htmlnode.NewParent("blockquote")
		for _, line := range strings.Split(block, "\n") {
			content := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ">"))
			if content == "" {
				continue
			}
			p, err := inlineParent("p", content)
			if err != nil {
				return nil, err
			}
			quote.Append(p)
		}
		return quote, nil

	case UnorderedList:
		return buildList("ul", block, func(line string) string {
			return strings.TrimPrefix(line, "- ")
		})

	case OrderedList:
		return buildList("ol", block, func(line string) string {
			if loc := orderedItemRegexp.FindStringIndex(line); loc != nil {
				return line[loc[1]:]
			}
			return line
		})

	default:
		return nil, fmt.Errorf("unknown block type %d", int(kind.Type))
	}
}

func buildHeading(block string, level int) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if m := headingRegexp.FindStringSubmatch(line); m != nil && len(m[1]) == level {
			lines[i] = line[level+1:]
			break
		}
	}
	return inlineParent(fmt.Sprintf("h%d", level), strings.Join(lines, "\n"))
}

func buildList(tag, block string, stripMarker func(string) string) (htmlnode.Node, error) {
	list := htmlnode.NewParent(tag)
	for _, line := range strings.Split(block, "\n") {
		item, err := inlineParent("li", strings.TrimSpace(stripMarker(line)))
		if err != nil {
			return nil, err
		}
		list.Append(item)
	}
	return list, nil
}

// inlineParent tokenizes text and wraps the resulting leaves in tag
func inlineParent(tag, text string) (htmlnode.Node, error) {
	nodes, err := Tokenize(text)
	if err != nil {
		return nil, err
	}

	children := make([]htmlnode.Node, 0, len(nodes))
	for _, n := range nodes {
		leaf, err := ToLeaf(n)
		if err != nil {
			return nil, err
		}
		children = append(children, leaf)
	}
	return htmlnode.NewParent(tag, children...), nil
}

// ToLeaf projects an inline node onto an HTML leaf
func ToLeaf(n InlineNode) (*htmlnode.Leaf, error) {
	switch n.Kind {
	case Plain:
		return htmlnode.NewText(n.Text), nil
	case Bold:
		return htmlnode.NewLeaf("b", n.Text), nil
	case Italic:
		return htmlnode.NewLeaf("i", n.Text), nil
	case Code:
		return htmlnode.NewLeaf("code", n.Text), nil
	case Link:
		return htmlnode.NewLeaf("a", n.Text, htmlnode.Attribute{Key: "href", Value: n.Target}), nil
	case Image:
		return htmlnode.NewLeaf("img", "",
			htmlnode.Attribute{Key: "src", Value: n.Target},
			htmlnode.Attribute{Key: "alt", Value: n.Text},
		), nil
	default:
		return nil, &UnknownInlineKindError{Kind: n.Kind}
	}
}
