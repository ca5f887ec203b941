package hashtag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   \t\n ", []string{}},
		{"no tags", "just some text", []string{}},
		{"single tag", "#java", []string{"java"}},
		{"tag inside word", "ja#va", []string{"va"}},
		{"trailing hash", "java#", []string{}},
		{"lone hash", "#", []string{}},
		{"leading dash", "#-java-spring", []string{}},
		{"stops at dash", "#java-spring", []string{"java"}},
		{"underscores", "#_java_spring__", []string{"_java_spring__"}},
		{"comma separated", "#java,#spring,#부트", []string{"java", "spring", "부트"}},
		{"adjacent with duplicates", "#java#java#spring#부트", []string{"java", "spring", "부트"}},
		{"embedded in prose", "아주 긴 글~~~~~~#java~~~~~~~#스프링~~~~~~~~", []string{"java", "스프링"}},
		{"digits", "#2024 #go1", []string{"2024", "go1"}},
		{"case sensitive", "#Java #java", []string{"Java", "java"}},
		{"surrounding whitespace", "  #go  ", []string{"go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNames(tt.content))
		})
	}
}

func TestParseNames_Deterministic(t *testing.T) {
	content := "#zeta #alpha #mid #alpha"
	first := ParseNames(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ParseNames(content))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, first)
}

func BenchmarkParseNames(b *testing.B) {
	content := strings.Repeat("some prose #golang and #스프링 with #tags, ", 200)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseNames(content)
	}
}
