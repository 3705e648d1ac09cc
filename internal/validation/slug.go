package validation

import (
	"regexp"
	"strings"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLength = 80

// Slugify converts a recipe title to its URL slug: lowercase, runs of
// non-alphanumeric characters collapse to single hyphens, leading and
// trailing hyphens are stripped. Titles that reduce to nothing fall
// back to "recipe".
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return "recipe"
	}
	return slug
}
