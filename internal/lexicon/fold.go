package lexicon

import (
	"strings"
	"unicode/utf8"
)

// IndexFold returns the byte span [start, end) of the first case-insensitive occurrence of
// substr in s, or (-1, -1). The span indexes s itself, so it stays valid when case folding
// changes the byte length of a rune.
func IndexFold(s, substr string) (int, int) {
	if substr == "" {
		return 0, 0
	}
	for i := 0; i < len(s); {
		if end, ok := matchFoldAt(s, i, substr); ok {
			return i, end
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return -1, -1
}

// ContainsFold reports whether substr occurs in s ignoring case.
func ContainsFold(s, substr string) bool {
	start, _ := IndexFold(s, substr)
	return start >= 0
}

func matchFoldAt(s string, i int, substr string) (int, bool) {
	j := i
	for _, want := range substr {
		if j >= len(s) {
			return 0, false
		}
		got, w := utf8.DecodeRuneInString(s[j:])
		if got != want && !strings.EqualFold(string(got), string(want)) {
			return 0, false
		}
		j += w
	}
	return j, true
}
