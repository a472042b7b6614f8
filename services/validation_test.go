package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsValidInput(t *testing.T) {
	in := validInput("My Tool")
	in.DemoURL = "https://tool.example.com"
	in.ImageURL = "https://img.example.com/a.png"
	assert.Nil(t, in.Validate("github.com"))
}

func TestValidateReportsEachField(t *testing.T) {
	in := ProjectInput{
		Title:       "ab",
		Description: "short",
		Content:     "too short",
		SourceURL:   "https://gitlab.com/x/y",
		DemoURL:     "not a url",
		ImageURL:    "ftp://files.example.com/a.png",
		Tags:        " , ,",
	}
	fields := in.Validate("github.com")
	for _, field := range []string{"title", "description", "content", "sourceUrl", "demoUrl", "imageUrl", "tags"} {
		assert.Contains(t, fields, field)
	}
}

func TestValidateLengthBounds(t *testing.T) {
	in := validInput(strings.Repeat("a", 100))
	assert.Nil(t, in.Validate("github.com"))

	in = validInput(strings.Repeat("a", 101))
	assert.Contains(t, in.Validate("github.com"), "title")

	in = validInput("abc")
	in.Description = strings.Repeat("é", 300)
	assert.Nil(t, in.Validate("github.com"))

	in.Description = strings.Repeat("é", 301)
	assert.Contains(t, in.Validate("github.com"), "description")
}

func TestValidateSourceHost(t *testing.T) {
	for raw, ok := range map[string]bool{
		"https://github.com/a/b":      true,
		"http://GitHub.com/a":         true,
		"https://gist.github.com/a/1": true,
		"https://evilgithub.com/a":    false,
		"https://github.com.evil.io":  false,
		"github.com/a/b":              false,
		"":                            false,
	} {
		in := validInput("Tool")
		in.SourceURL = raw
		_, bad := in.Validate("github.com")["sourceUrl"]
		assert.Equal(t, !ok, bad, raw)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "cli", "Web Dev"}, ParseTags(" go, cli,,Web Dev , GO "))
	assert.Empty(t, ParseTags(""))
	assert.NotNil(t, ParseTags(""))
}

func TestCoerceBool(t *testing.T) {
	for _, v := range []string{"on", "true", "TRUE", "1", "yes", " Yes "} {
		assert.True(t, CoerceBool(v), v)
	}
	for _, v := range []string{"", "off", "false", "0", "no", "nope"} {
		assert.False(t, CoerceBool(v), v)
	}
}
