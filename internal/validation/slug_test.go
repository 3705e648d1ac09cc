package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"Simple", "Apple Pie", "apple-pie"},
		{"Punctuation", "Grandma's Best Pie!", "grandma-s-best-pie"},
		{"Collapses Runs", "Slow   Cooked -- Ribs", "slow-cooked-ribs"},
		{"Trims Edges", "  Tacos  ", "tacos"},
		{"Keeps Digits", "5 Minute Salsa", "5-minute-salsa"},
		{"Non ASCII Stripped", "Crème Brûlée", "cr-me-br-l-e"},
		{"All Symbols Falls Back", "!!!", "recipe"},
		{"Empty Falls Back", "", "recipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	t.Parallel()
	slug := Slugify(strings.Repeat("pumpkin spice ", 20))
	assert.LessOrEqual(t, len(slug), 80)
	assert.False(t, strings.HasSuffix(slug, "-"), "truncation must not leave a trailing hyphen")
}
