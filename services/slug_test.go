package services

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"  --Go  Rocks-- ":     "go-rocks",
		"C++ & Rust":           "c-rust",
		"Café Ünïcode":         "caf-n-code",
		"already-a-slug":       "already-a-slug",
		"v2.0 Release (beta)":  "v2-0-release-beta",
		"UPPER_snake_Case 123": "upper-snake-case-123",
	}
	for title, want := range cases {
		assert.Equal(t, want, Slugify(title), title)
	}
}

func TestSlugifyFallsBackForSymbolOnlyTitles(t *testing.T) {
	fallback := regexp.MustCompile(`^project-[0-9a-f]{8}$`)
	for _, title := range []string{"", "!!!", "🚀🚀", "---", "日本語"} {
		slug := Slugify(title)
		assert.Regexp(t, fallback, slug, title)
		assert.True(t, IsValidSlug(slug))
	}
}

func TestSlugifyAlwaysProducesValidSlug(t *testing.T) {
	alphabet := []rune("abcXYZ019 -_.,!?/\\'\"é日🚀\t\n")
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		var b strings.Builder
		for n := r.IntN(40); n > 0; n-- {
			b.WriteRune(alphabet[r.IntN(len(alphabet))])
		}
		title := b.String()
		slug := Slugify(title)
		require.True(t, IsValidSlug(slug), "title %q gave %q", title, slug)
	}
}

func TestUniqueSlug(t *testing.T) {
	ctx := context.Background()

	slug, attempt, err := uniqueSlug(ctx, "tool", 0, func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "tool", slug)
	assert.Zero(t, attempt)

	taken := map[string]bool{"tool": true}
	slug, _, err = uniqueSlug(ctx, "tool", 0, func(_ context.Context, s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Regexp(t, `^tool-\d{1,4}$`, slug)

	slug, attempt, err = uniqueSlug(ctx, "tool", 0, func(context.Context, string) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.Regexp(t, `^tool-[0-9a-f]{8}$`, slug)
	assert.Equal(t, maxSlugAttempts, attempt)
}
