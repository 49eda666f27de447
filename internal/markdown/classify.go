package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// BlockType is the structural kind of a block
type BlockType int

const (
	Paragraph BlockType = iota
	Heading
	CodeFence
	Quote
	UnorderedList
	OrderedList
)

func (t BlockType) String() string {
	switch t {
	case Paragraph:
		return "Paragraph"
	case Heading:
		return "Heading"
	case CodeFence:
		return "Code"
	case Quote:
		return "Quote"
	case UnorderedList:
		return "Unordered list"
	case OrderedList:
		return "Ordered list"
	default:
		return "Unknown"
	}
}

// BlockKind is a classified block type. Level is 1..6 for headings and 0 otherwise.
type BlockKind struct {
	Type  BlockType
	Level int
}

var (
	// Capture group 1: heading opener
	headingRegexp = regexp.MustCompile(`^(#{1,6}) `)
	// Capture group 1: item number
	orderedItemRegexp = regexp.MustCompile(`^(\d+)\.[ \t]+`)
)

// Classify determines the kind of a block. The checks run in a fixed order
// and the first one that matches wins. Heading and quote checks accept a
// match on any line of the block.
func Classify(block string) BlockKind {
	lines := strings.Split(block, "\n")

	if level := headingLevel(lines); level > 0 {
		return BlockKind{Type: Heading, Level: level}
	}
	if isCodeFence(block) {
		return BlockKind{Type: CodeFence}
	}
	if anyLine(lines, func(line string) bool { return strings.HasPrefix(line, ">") }) {
		return BlockKind{Type: Quote}
	}
	if allLines(lines, func(line string) bool { return strings.HasPrefix(line, "- ") }) {
		return BlockKind{Type: UnorderedList}
	}
	if isOrderedList(lines) {
		return BlockKind{Type: OrderedList}
	}
	return BlockKind{Type: Paragraph}
}

// headingLevel returns the level of the first heading line, or 0
func headingLevel(lines []string) int {
	for _, line := range lines {
		if m := headingRegexp.FindStringSubmatch(line); m != nil {
			return len(m[1])
		}
	}
	return 0
}

// isCodeFence reports whether the whole block is wrapped in a pair of
// three-backtick fences
func isCodeFence(block string) bool {
	n := len(block)
	if n < 2*len(Fence) {
		return false
	}
	if !strings.HasPrefix(block, Fence) || !strings.HasSuffix(block, Fence) {
		return false
	}
	return block[len(Fence)] != '`' && block[n-len(Fence)-1] != '`'
}

// isOrderedList reports whether line i starts with the marker "i." for
// every line, counting from 1
func isOrderedList(lines []string) bool {
	for i, line := range lines {
		m := orderedItemRegexp.FindStringSubmatch(line)
		if m == nil {
			return false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n != i+1 {
			return false
		}
	}
	return len(lines) > 0
}

func anyLine(lines []string, pred func(string) bool) bool {
	for _, line := range lines {
		if pred(line) {
			return true
		}
	}
	return false
}

func allLines(lines []string, pred func(string) bool) bool {
	for _, line := range lines {
		if !pred(line) {
			return false
		}
	}
	return len(lines) > 0
}
