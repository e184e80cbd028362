// Package chunk splits long text into word-aligned segments for size-limited consumers.
package chunk

import (
	"fmt"
	"iter"
	"strings"
)

// Chunk is a contiguous run of whole words from the source text.
type Chunk struct {
	Index int
	Text  string // words joined by single spaces
	Words int
}

// Words lazily yields consecutive groups of size words from text. The last chunk may be
// shorter. The sequence is a pure function of its inputs and may be ranged over again.
// size <= 0 is a programming error and panics.
func Words(text string, size int) iter.Seq[Chunk] {
	if size <= 0 {
		panic(fmt.Sprintf("chunk: size must be positive, got %d", size))
	}
	return func(yield func(Chunk) bool) {
		words := strings.Fields(text)
		for i, idx := 0, 0; i < len(words); i, idx = i+size, idx+1 {
			end := min(i+size, len(words))
			c := Chunk{Index: idx, Text: strings.Join(words[i:end], " "), Words: end - i}
			if !yield(c) {
				return
			}
		}
	}
}

// Collect materializes Words into a slice.
func Collect(text string, size int) []Chunk {
	var out []Chunk
	for c := range Words(text, size) {
		out = append(out, c)
	}
	return out
}

// Count returns the number of chunks Words would yield without building them.
func Count(text string, size int) int {
	if size <= 0 {
		panic(fmt.Sprintf("chunk: size must be positive, got %d", size))
	}
	n := WordCount(text)
	return (n + size - 1) / size
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
