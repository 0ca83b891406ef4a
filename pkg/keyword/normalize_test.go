package keyword

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Best Laptops  ", "best laptops"},
		{"best\tlaptops   for\ncollege", "best laptops for college"},
		{"CAFÉ", "café"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestDedupe_KeepsFirstSeenOrder(t *testing.T) {
	got := Dedupe([]string{"Running Shoes", "trail shoes", " running  shoes", "", "TRAIL SHOES", "hiking boots"})
	assert.Equal(t, []string{"running shoes", "trail shoes", "hiking boots"}, got)
}

func TestParseLines(t *testing.T) {
	got := ParseLines("seo tools\r\nkeyword research, serp checker\n\nSEO Tools\n")
	assert.Equal(t, []string{"seo tools", "keyword research", "serp checker"}, got)
}

func TestParseCSV(t *testing.T) {
	input := "keyword,volume\nseo tools,100\n\"rank tracker\",20\nSEO tools,5\nsolo\n"
	got, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"seo tools", "rank tracker", "solo"}, got)
}

func TestParseCSV_Malformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("\"unterminated\n"))
	assert.Error(t, err)
}
