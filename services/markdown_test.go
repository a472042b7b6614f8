package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("# Title\n\n- one\n- two\n\nvisit https://example.com")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<li>one</li>")
	assert.Contains(t, html, `<a href="https://example.com">`)

	assert.Empty(t, RenderMarkdown("   "))
	assert.NotContains(t, RenderMarkdown("hi <iframe src=x></iframe>"), "<iframe")
}
