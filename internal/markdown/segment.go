package markdown

import (
	"strings"
)

// Fence opens and closes a code block
const Fence = "```"

type segmentState int

const (
	outside segmentState = iota
	inFence
)

// segmenter consumes a document one line at a time and emits completed blocks
type segmenter struct {
	state  segmentState
	lines  []string
	fence  strings.Builder
	blocks []string
}

// Segment splits a document into blocks. Outside a code fence, blocks are
// separated by blank lines and their lines are joined with single spaces.
// Inside a fence every line is kept verbatim, newline included, until the
// closing fence.
func Segment(document string) []string {
	s := &segmenter{}
	for _, line := range strings.Split(document, "\n") {
		s.consume(line)
	}
	s.finish()
	return s.blocks
}

func (s *segmenter) consume(line string) {
	trimmed := strings.TrimSpace(line)

	switch s.state {
	case outside:
		if trimmed == "" {
			s.flushLines()
			return
		}
		if strings.HasPrefix(trimmed, Fence) {
			s.flushLines()
			// The info string after the opening fence is not kept.
			s.fence.WriteString(Fence)
			s.state = inFence
			return
		}
		s.lines = append(s.lines, trimmed)

	case inFence:
		if strings.HasPrefix(trimmed, Fence) {
			s.fence.WriteString(trimmed)
			s.flushFence()
			return
		}
		s.fence.WriteString(line)
		s.fence.WriteByte('\n')
	}
}

// finish flushes whatever block is still open at end of input
func (s *segmenter) finish() {
	switch s.state {
	case outside:
		s.flushLines()
	case inFence:
		s.flushFence()
	}
}

func (s *segmenter) flushLines() {
	if len(s.lines) == 0 {
		return
	}
	if block := strings.TrimSpace(strings.Join(s.lines, " ")); block != "" {
		s.blocks = append(s.blocks, block)
	}
	s.lines = s.lines[:0]
}

func (s *segmenter) flushFence() {
	s.blocks = append(s.blocks, s.fence.String())
	s.fence.Reset()
	s.state = outside
}
