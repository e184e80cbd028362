package llm

import (
	"regexp"
	"strings"
)

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// StripCodeFences removes a markdown code fence some models wrap around JSON replies.
func StripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if m := reFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
