package markdown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty document",
			input:    "",
			expected: nil,
		},
		{
			name:     "only blank lines",
			input:    "\n  \n\t\n",
			expected: nil,
		},
		{
			name:     "many blank lines between paragraphs",
			input:    "para one\n\n\n\n\npara two",
			expected: []string{"para one", "para two"},
		},
		{
			name:     "lines are joined with a single space",
			input:    "  line a  \nline b\n   line c",
			expected: []string{"line a line b line c"},
		},
		{
			name: "heading paragraph and list",
			input: `# This is a heading

This is a paragraph of text. It has some **bold** and _italic_ words inside of it.

- This is the first list item in a list block
- This is a list item
- This is another list item`,
			expected: []string{
				"# This is a heading",
				"This is a paragraph of text. It has some **bold** and _italic_ words inside of it.",
				"- This is the first list item in a list block - This is a list item - This is another list item",
			},
		},
		{
			name:     "fence keeps newlines and blank lines",
			input:    "```\nx := 1\n\n  y := 2\n```",
			expected: []string{"```x := 1\n\n  y := 2\n```"},
		},
		{
			name:     "fence ends the open paragraph",
			input:    "text before\n```\ncode\n```\ntext after",
			expected: []string{"text before", "```code\n```", "text after"},
		},
		{
			name:     "info string is dropped",
			input:    "```go\nfmt.Println()\n```",
			expected: []string{"```fmt.Println()\n```"},
		},
		{
			name:     "indented fences",
			input:    "  ```\n  keep indent\n  ```",
			expected: []string{"```  keep indent\n```"},
		},
		{
			name:     "unterminated fence is flushed at end of input",
			input:    "```\ncode\n",
			expected: []string{"```code\n\n"},
		},
		{
			name:     "two fences in a row",
			input:    "```\na\n```\n```\nb\n```",
			expected: []string{"```a\n```", "```b\n```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Segment(tt.input)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Errorf("Segment mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
