// Package sentence implements the rule-based sentence boundary detector
// the responder stage uses to turn a growing LLM completion into
// emittable Sentences as soon as a boundary appears, mirroring the
// original pipeline's sent_tokenize-on-the-growing-buffer approach
// without pulling in an NLP dependency the pack never uses from Go.
package sentence

import (
	"regexp"
	"strings"
)

// boundary matches a sentence-ending punctuation mark followed by
// whitespace (or end of string), conservative enough to avoid splitting
// on abbreviation-style periods followed directly by a letter.
var boundary = regexp.MustCompile(`[.!?]+["')\]]*(\s+|$)`)

// Splitter accumulates streamed text and yields complete sentences as
// soon as a boundary is seen, keeping the trailing partial sentence
// buffered until either another boundary arrives or Flush is called.
type Splitter struct {
	buf string
}

// NewSplitter returns an empty Splitter.
func NewSplitter() *Splitter { return &Splitter{} }

// Push appends text to the buffer and returns every complete sentence
// found, in order. Any trailing partial sentence remains buffered.
func (s *Splitter) Push(text string) []string {
	s.buf += text

	var out []string
	for {
		loc := boundary.FindStringIndex(s.buf)
		if loc == nil {
			break
		}
		if sentence := strings.TrimSpace(s.buf[:loc[1]]); sentence != "" {
			out = append(out, sentence)
		}
		s.buf = s.buf[loc[1]:]
	}
	return out
}

// Flush returns the remaining buffered partial sentence, if any, and
// resets the buffer. Called once at end-of-generation so the last
// sentence is never dropped.
func (s *Splitter) Flush() string {
	rest := strings.TrimSpace(s.buf)
	s.buf = ""
	return rest
}
