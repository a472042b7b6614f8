package services

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// ProjectInput is the submitted project form. Tags is the raw comma separated list.
type ProjectInput struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	Content             string `json:"content"`
	SourceURL           string `json:"sourceUrl"`
	DemoURL             string `json:"demoUrl"`
	ImageURL            string `json:"imageUrl"`
	Tags                string `json:"tags"`
	SeekingContributors bool   `json:"seekingContributors"`
}

func (in ProjectInput) normalized() ProjectInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Content = strings.TrimSpace(in.Content)
	in.SourceURL = strings.TrimSpace(in.SourceURL)
	in.DemoURL = strings.TrimSpace(in.DemoURL)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Validate returns one message per invalid field, or nil when the input is acceptable.
// sourceHost is the hosting domain source links must point at.
func (in ProjectInput) Validate(sourceHost string) map[string]string {
	in = in.normalized()
	fields := make(map[string]string)

	if n := utf8.RuneCountInString(in.Title); n < 3 || n > 100 {
		fields["title"] = "Title must be between 3 and 100 characters"
	}
	if n := utf8.RuneCountInString(in.Description); n < 10 || n > 300 {
		fields["description"] = "Description must be between 10 and 300 characters"
	}
	if utf8.RuneCountInString(in.Content) < 20 {
		fields["content"] = "Content must be at least 20 characters"
	}
	if !isHostURL(in.SourceURL, sourceHost) {
		fields["sourceUrl"] = "Source URL must be a valid " + sourceHost + " link"
	}
	if in.DemoURL != "" && !isWebURL(in.DemoURL) {
		fields["demoUrl"] = "Demo URL must be a valid URL"
	}
	if in.ImageURL != "" && !isWebURL(in.ImageURL) {
		fields["imageUrl"] = "Image URL must be a valid URL"
	}
	if len(ParseTags(in.Tags)) == 0 {
		fields["tags"] = "Add at least one tag"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ParseTags splits a comma separated list, trimming blanks and dropping duplicates.
func ParseTags(raw string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	return tags
}

// CoerceBool interprets a form checkbox value.
func CoerceBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isHostURL(raw, host string) bool {
	if !isWebURL(raw) {
		return false
	}
	u, _ := url.Parse(raw)
	h := strings.ToLower(u.Hostname())
	host = strings.ToLower(host)
	return h == host || strings.HasSuffix(h, "."+host)
}
