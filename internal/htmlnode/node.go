// Package htmlnode implements the HTML element tree produced by the markdown
// package and its serialization to an HTML string.
package htmlnode

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingValue is returned when a leaf without a value is rendered.
	ErrMissingValue = errors.New("leaf node has no value")
	// ErrMissingTag is returned when a parent without a tag is rendered.
	ErrMissingTag = errors.New("parent node has no tag")
	// ErrMissingChildren is returned when a parent without a children list is rendered.
	ErrMissingChildren = errors.New("parent node has no children")
)

// Node is an element of the HTML tree
type Node interface {
	ToHTML() (string, error)
}

// Attribute is a single key="value" pair on a leaf element
type Attribute struct {
	Key   string
	Value string
}

// Leaf is a terminal node carrying text.
//
// A leaf without a tag renders its value verbatim. An "img" leaf renders as a
// self-closing element with its attributes only.
type Leaf struct {
	Tag        string
	Value      *string
	Attributes []Attribute
}

// Parent is a container node that owns an ordered list of children.
// A nil Children slice is invalid; an empty one renders as an empty element.
type Parent struct {
	Tag      string
	Children []Node
}

// NewLeaf creates a leaf with the given tag, value and attributes
func NewLeaf(tag, value string, attrs ...Attribute) *Leaf {
	return &Leaf{
		Tag:        tag,
		Value:      &value,
		Attributes: attrs,
	}
}

// NewText creates an untagged leaf that renders as plain text
func NewText(value string) *Leaf {
	return NewLeaf("", value)
}

// NewParent creates a parent node with the given tag and children
func NewParent(tag string, children ...Node) *Parent {
	if children == nil {
		children = []Node{}
	}
	return &Parent{
		Tag:      tag,
		Children: children,
	}
}

// ToHTML renders the leaf
func (l *Leaf) ToHTML() (string, error) {
	if l.Value == nil {
		return "", fmt.Errorf("<%s>: %w", l.Tag, ErrMissingValue)
	}

	switch l.Tag {
	case "":
		return *l.Value, nil
	case "img":
		return "<img" + attributesToHTML(l.Attributes) + " />", nil
	default:
		return fmt.Sprintf("<%s%s>%s</%s>", l.Tag, attributesToHTML(l.Attributes), *l.Value, l.Tag), nil
	}
}

// ToHTML renders the parent and, recursively, all of its children
func (p *Parent) ToHTML() (string, error) {
	if p.Tag == "" {
		return "", ErrMissingTag
	}
	if p.Children == nil {
		return "", fmt.Errorf("<%s>: %w", p.Tag, ErrMissingChildren)
	}

	var sb strings.Builder
	sb.WriteString("<" + p.Tag + ">")
	for _, child := range p.Children {
		html, err := child.ToHTML()
		if err != nil {
			return "", err
		}
		sb.WriteString(html)
	}
	sb.WriteString("</" + p.Tag + ">")

	return sb.String(), nil
}

// Append adds children to the end of the parent's child list
func (p *Parent) Append(children ...Node) {
	if p.Children == nil {
		p.Children = []Node{}
	}
	p.Children = append(p.Children, children...)
}

func attributesToHTML(attrs []Attribute) string {
	if len(attrs) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, a := range attrs {
		fmt.Fprintf(&sb, ` %s="%s"`, a.Key, a.Value)
	}
	return sb.String()
}
