// Package chunker splits page text into bounded, overlapping chunks.
package chunker

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// DefaultSeparators are ordered from "best" to "worst" for semantic meaning:
// paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter is a recursive character splitter. Sizes are counted in characters.
type Splitter struct {
	maxSize    int
	overlap    int
	separators []string
}

func NewSplitter(maxSize int, overlap int) (*Splitter, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d", commonModels.ErrInvalidChunkConfig, maxSize, overlap)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap, separators: DefaultSeparators}, nil
}

// Split returns the chunks of text. Nothing is computed until the sequence is
// ranged over, and every range starts from the beginning again.
func (s *Splitter) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, chunk := range s.splitText(text, s.separators) {
			if !yield(chunk) {
				return
			}
		}
	}
}

func (s *Splitter) Chunks(text string) []string {
	var chunks []string
	for c := range s.Split(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

func (s *Splitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var final []string
	var good []string
	for _, piece := range splitOn(text, separator) {
		if runeLen(piece) < s.maxSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits packs small pieces into chunks of at most maxSize, carrying up to
// overlap characters of the previous chunk into the next one.
func (s *Splitter) mergeSplits(splits []string, separator string) []string {
	sepLen := runeLen(separator)
	var docs []string
	var current []string
	total := 0

	joinedLen := func(l int) int {
		if len(current) > 0 {
			return total + l + sepLen
		}
		return total + l
	}

	for _, piece := range splits {
		l := runeLen(piece)
		if joinedLen(l) > s.maxSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (joinedLen(l) > s.maxSize && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, piece)
		if len(current) > 1 {
			total += l + sepLen
		} else {
			total += l
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func splitOn(text string, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(text, separator)
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return kept
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
