package llm

import (
	"fmt"
	"strings"
)

// Splitter carves oversized transcripts into overlapping, sentence-aligned
// chunks no longer than maxChars each.
type Splitter struct {
	maxChars int
	overlap  int
}

// NewSplitter validates the chunking parameters once, at construction.
// overlap >= maxChars would stall the window and is rejected here rather than
// defended against per iteration.
func NewSplitter(maxChars, overlap int) (*Splitter, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("maxChars must be positive, got %d", maxChars)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", overlap)
	}
	if overlap >= maxChars {
		return nil, fmt.Errorf("overlap (%d) must be smaller than maxChars (%d)", overlap, maxChars)
	}
	return &Splitter{maxChars: maxChars, overlap: overlap}, nil
}

// sentence-ending sequences searched for when snapping a chunk boundary.
var sentenceEnds = []string{". ", "! ", "? "}

// Split returns text as a single chunk when it fits, otherwise an ordered
// sequence of chunks where consecutive chunks share overlap characters.
// Boundaries that fall mid-document are snapped back to the last sentence end
// in the final 20% of the chunk, so sentences are not cut in half.
func (s *Splitter) Split(text string) []string {
	if len(text) <= s.maxChars {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + s.maxChars
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		if snapped, ok := s.snapToSentence(text, start, end); ok {
			// A snapped boundary must still advance the window past the
			// previous start; otherwise fall back to the raw cut.
			if snapped-s.overlap > start {
				end = snapped
			}
		}

		chunks = append(chunks, text[start:end])
		start = end - s.overlap
	}

	return chunks
}

// snapToSentence searches backward from end to start+0.8*maxChars for the last
// sentence-ending punctuation and returns the position just past it.
func (s *Splitter) snapToSentence(text string, start, end int) (int, bool) {
	window := start + s.maxChars*4/5
	if window >= end {
		return 0, false
	}

	best := -1
	for _, punct := range sentenceEnds {
		if idx := strings.LastIndex(text[window:end], punct); idx >= 0 {
			if pos := window + idx + len(punct); pos > best {
				best = pos
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
