package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Keys owned by the post itself. Everything else in a body is passed
// through verbatim in Fields.
const (
	KeyID        = "id"
	KeyTitle     = "title"
	KeySlug      = "slug"
	KeyCreatedAt = "created_at"
)

// Post is the single resource managed by the service.
type Post struct {
	ID        uuid.UUID
	Title     string
	Slug      string
	CreatedAt time.Time

	// Fields holds any body keys that are not recognized above.
	Fields map[string]any
}

// NewPost builds a post from a decoded request body. The id and
// created_at keys are ignored; the store assigns them.
func NewPost(body map[string]any) Post {
	var p Post
	p.Apply(body)
	return p
}

// Apply overwrites the post with every key present in fields. Store-owned
// keys (id, created_at) are skipped, and slug is taken as given. A title or
// slug that is not a string is kept verbatim in Fields and the typed field
// is left empty.
func (p *Post) Apply(fields map[string]any) {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	for k, v := range fields {
		switch k {
		case KeyID, KeyCreatedAt:
		case KeyTitle:
			p.Title = p.setString(k, v)
		case KeySlug:
			p.Slug = p.setString(k, v)
		default:
			p.Fields[k] = v
		}
	}
}

func (p *Post) setString(key string, v any) string {
	if s, ok := v.(string); ok {
		delete(p.Fields, key)
		return s
	}
	p.Fields[key] = v
	return ""
}

// TitleOf returns the body's title when it is a string, "" otherwise.
func TitleOf(body map[string]any) string {
	s, _ := body[KeyTitle].(string)
	return s
}

// MarshalJSON flattens Fields next to the recognized keys.
func (p Post) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+4)
	for k, v := range p.Fields {
		out[k] = v
	}
	out[KeyID] = p.ID
	if _, raw := p.Fields[KeyTitle]; !raw {
		out[KeyTitle] = p.Title
	}
	if _, raw := p.Fields[KeySlug]; !raw {
		out[KeySlug] = p.Slug
	}
	out[KeyCreatedAt] = p.CreatedAt
	return json.Marshal(out)
}

// UnmarshalJSON reads a stored document back, including id and created_at.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var post Post
	if s, ok := raw[KeyID].(string); ok {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("parse post id: %w", err)
		}
		post.ID = id
	}
	if s, ok := raw[KeyCreatedAt].(string); ok {
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse created_at: %w", err)
		}
		post.CreatedAt = ts
	}
	post.Apply(raw)

	*p = post
	return nil
}
