package plan

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("(?i)\\s*```$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Normalize repairs the common ways model output wraps or mangles a JSON
// object. Steps run in a fixed order:
//
//  1. trim surrounding whitespace
//  2. strip a leading ```json / ``` fence and a trailing ``` fence
//  3. keep only the text between the first '{' and the last '}'
//  4. drop commas directly before '}' or ']'
//  5. if the text contains no '"' at all but does contain '\'', rewrite
//     every '\'' to '"'
//
// Step 4 also applies inside string values and step 5 rewrites apostrophes
// in prose; both are lossy heuristics, not a JSON parser.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first != -1 && last != -1 {
		if first < last {
			s = s[first : last+1]
		} else {
			s = ""
		}
	}

	s = trailingComma.ReplaceAllString(s, "$1")

	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}
