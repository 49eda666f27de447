package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front matter section
const Delimiter = "---"

// Matter holds the page metadata declared in a document's front matter
type Matter struct {
	Title    string   `yaml:"title"`
	Draft    bool     `yaml:"draft"`
	Template string   `yaml:"template"`
	Tags     []string `yaml:"tags"`
}

// Split separates YAML front matter from the document body.
// A document without a complete front matter section is returned unchanged
// as the body with an empty Matter.
func Split(content string) (Matter, string, error) {
	var matter Matter

	lines := strings.Split(content, "\n")

	// Check for front matter delimiters
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return matter, content, nil
	}

	// Find end of front matter
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return matter, content, nil
	}

	yamlContent := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(yamlContent), &matter); err != nil {
		return Matter{}, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	// Skip leading blank lines in body
	body := lines[end+1:]
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}

	return matter, strings.Join(body, "\n"), nil
}
