// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits extracted paper text into overlapping chunks for
// indexing. Text is split on the coarsest separator present ("\n\n", then
// "\n", then " ", then individual characters) and the pieces are merged
// back up to the chunk size, carrying a trailing overlap into the next chunk.
// Lengths are counted in characters (runes).
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the separator hierarchy, coarsest first. The empty
// separator splits into single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter holds the chunking parameters.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// New returns a Splitter using DefaultSeparators.
func New(size, overlap int) *Splitter {
	return &Splitter{Size: size, Overlap: overlap, Separators: DefaultSeparators}
}

// Split returns the chunks of text in document order. Chunks are trimmed
// of surrounding whitespace and never empty.
func (s *Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	return s.split(text, seps)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var chunks, good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if length(piece) < s.Size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge joins adjacent pieces while they fit in Size. When a chunk is
// emitted, pieces are dropped from its front until at most Overlap
// characters remain to seed the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var out, current []string
	total := 0
	for _, p := range pieces {
		n := length(p)
		if total+n > s.Size && len(current) > 0 {
			if doc := joinTrimmed(current); doc != "" {
				out = append(out, doc)
			}
			for total > s.Overlap || (total+n > s.Size && total > 0) {
				total -= length(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := joinTrimmed(current); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitKeepingSeparator splits text on sep and prefixes every piece after
// the first with the separator that preceded it, so joining the pieces
// reproduces text. Empty pieces are dropped. An empty sep yields characters.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinTrimmed(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
