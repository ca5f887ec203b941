// Package hashtag extracts hashtag names from free text.
package hashtag

import (
	"regexp"
	"sort"
	"strings"
)

// A tag is '#' followed by ASCII word characters or Hangul syllables.
var tagPattern = regexp.MustCompile(`#([\w가-힣]+)`)

// ParseNames returns the distinct hashtag names found in content, without the
// leading '#', sorted. Names are case-sensitive. Blank input yields an empty
// slice.
func ParseNames(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return []string{}
	}

	matches := tagPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
