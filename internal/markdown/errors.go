package markdown

import (
	"errors"
	"fmt"
)

// ErrNoTitle is returned by ExtractTitle when a document has no h1 line
var ErrNoTitle = errors.New("document has no title heading")

// UnterminatedDelimiterError reports a bold, italic or code delimiter
// without a matching close inside one span of text
type UnterminatedDelimiterError struct {
	Delimiter string
	Text      string
}

func (e *UnterminatedDelimiterError) Error() string {
	return fmt.Sprintf("missing closing delimiter %q in %q", e.Delimiter, e.Text)
}

// UnknownInlineKindError reports an inline node whose kind has no HTML projection
type UnknownInlineKindError struct {
	Kind InlineKind
}

func (e *UnknownInlineKindError) Error() string {
	return fmt.Sprintf("unknown inline kind %d", int(e.Kind))
}
