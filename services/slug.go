package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxSlugAttempts = 8

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify lower-cases title, collapses every run of non-alphanumeric characters into a
// single hyphen and trims hyphens from both ends. Titles with no ASCII letters or digits
// get a synthetic "project-xxxxxxxx" slug.
func Slugify(title string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "project-" + shortID()
	}
	return slug
}

// IsValidSlug reports whether s is a well-formed slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// slugCandidate is base on the first attempt, base with a random numeric suffix on the
// following ones and base with a uuid fragment once attempts run out.
func slugCandidate(base string, attempt int) string {
	switch {
	case attempt == 0:
		return base
	case attempt < maxSlugAttempts:
		return fmt.Sprintf("%s-%d", base, rand.IntN(10000))
	default:
		return base + "-" + shortID()
	}
}

type slugExistsFunc func(ctx context.Context, slug string) (bool, error)

// uniqueSlug returns the first candidate for base that exists reports as free. The unique
// index remains the final arbiter; callers retry on a duplicate key at insert time.
func uniqueSlug(ctx context.Context, base string, startAttempt int, exists slugExistsFunc) (string, int, error) {
	for attempt := startAttempt; ; attempt++ {
		candidate := slugCandidate(base, attempt)
		if attempt >= maxSlugAttempts {
			return candidate, attempt, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", attempt, err
		}
		if !taken {
			return candidate, attempt, nil
		}
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
