// Package slug turns post titles into URL-safe identifiers.
package slug

import (
	"posts-api/internal/model"

	gosimple "github.com/gosimple/slug"
)

// Delimiter joins the words of a slug.
const Delimiter = "-"

// Derive lower-cases and transliterates title and joins its words with
// Delimiter. An empty title yields an empty slug.
func Derive(title string) string {
	return gosimple.Make(title)
}

// FromBody derives the slug for a decoded request body. A missing or
// non-string title is treated as empty rather than an error.
func FromBody(body map[string]any) string {
	return Derive(model.TitleOf(body))
}
