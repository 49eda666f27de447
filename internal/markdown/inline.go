package markdown

import (
	"regexp"
	"strings"
)

// InlineKind is the formatting carried by an inline span
type InlineKind int

const (
	Plain InlineKind = iota
	Bold
	Italic
	Code
	Link
	Image
)

func (k InlineKind) String() string {
	switch k {
	case Plain:
		return "Plain"
	case Bold:
		return "Bold"
	case Italic:
		return "Italic"
	case Code:
		return "Code"
	case Link:
		return "Link"
	case Image:
		return "Image"
	default:
		return "Unknown"
	}
}

// InlineNode is one span of inline text. Target is only set for links and images.
type InlineNode struct {
	Text   string
	Kind   InlineKind
	Target string
}

// Delimiters of the inline forms, in the order they are split
const (
	CodeDelimiter   = "`"
	BoldDelimiter   = "**"
	ItalicDelimiter = "_"
)

var (
	// Capture groups:
	// 1. Label, which may not contain ']'
	// 2. Target, which may contain one level of balanced parentheses
	imageRegexp = regexp.MustCompile(`!\[([^\]]+)\]\(((?:[^()]+|\([^()]*\))*)\)`)
	linkRegexp  = regexp.MustCompile(`\[([^\]]+)\]\(((?:[^()]+|\([^()]*\))*)\)`)
)

// Tokenize splits text into inline nodes: code spans first, then bold,
// italic, images and links. Spans already given a kind are never split again.
func Tokenize(text string) ([]InlineNode, error) {
	nodes := []InlineNode{{Text: text, Kind: Plain}}

	var err error
	if nodes, err = SplitDelimited(nodes, CodeDelimiter, Code); err != nil {
		return nil, err
	}
	if nodes, err = SplitDelimited(nodes, BoldDelimiter, Bold); err != nil {
		return nil, err
	}
	if nodes, err = SplitDelimited(nodes, ItalicDelimiter, Italic); err != nil {
		return nil, err
	}

	nodes = SplitImages(nodes)
	nodes = SplitLinks(nodes)
	return nodes, nil
}

// SplitDelimited splits every plain node on delimiter. Parts alternate
// between plain text and kind; an even number of parts means the last
// delimiter was never closed. Empty parts are dropped.
func SplitDelimited(nodes []InlineNode, delimiter string, kind InlineKind) ([]InlineNode, error) {
	result := make([]InlineNode, 0, len(nodes))

	for _, node := range nodes {
		if node.Kind != Plain {
			result = append(result, node)
			continue
		}

		parts := strings.Split(node.Text, delimiter)
		if len(parts)%2 == 0 {
			return nil, &UnterminatedDelimiterError{Delimiter: delimiter, Text: node.Text}
		}

		for i, part := range parts {
			if part == "" {
				continue
			}
			partKind := Plain
			if i%2 == 1 {
				partKind = kind
			}
			result = append(result, InlineNode{Text: part, Kind: partKind})
		}
	}

	return result, nil
}

// SplitImages extracts ![alt](url) spans from plain nodes
func SplitImages(nodes []InlineNode) []InlineNode {
	return splitMatches(nodes, imageRegexp, Image)
}

// SplitLinks extracts [text](url) spans from plain nodes
func SplitLinks(nodes []InlineNode) []InlineNode {
	return splitMatches(nodes, linkRegexp, Link)
}

// splitMatches peels the matches of re off each plain node from left to
// right. A match with an empty target is left in the surrounding text.
func splitMatches(nodes []InlineNode, re *regexp.Regexp, kind InlineKind) []InlineNode {
	result := make([]InlineNode, 0, len(nodes))

	for _, node := range nodes {
		if node.Kind != Plain {
			result = append(result, node)
			continue
		}

		text := node.Text
		last := 0
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			target := text[m[4]:m[5]]
			if target == "" {
				continue
			}
			if before := text[last:m[0]]; before != "" {
				result = append(result, InlineNode{Text: before, Kind: Plain})
			}
			result = append(result, InlineNode{Text: text[m[2]:m[3]], Kind: kind, Target: target})
			last = m[1]
		}

		if rest := text[last:]; rest != "" {
			result = append(result, InlineNode{Text: rest, Kind: Plain})
		}
	}

	return result
}
