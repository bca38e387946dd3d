package document

import (
	"fmt"
	"maps"
	"slices"
)

// Corpus record keys.
const (
	KeyID       = "id"
	KeyTitle    = "baslik"
	KeyContent  = "icerik"
	KeyCategory = "kategori"
)

// Document is a legal-reference record (immutable value object).
// Identity is its position in load order; ID uniqueness is not enforced.
type Document struct {
	id       string
	title    string
	content  string
	category string
	extra    map[string]string
	vector   []float32
}

// New validates and creates a Document. Content is the only required field.
func New(id, title, content, category string, extra map[string]string) (Document, error) {
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	return Document{
		id:       id,
		title:    title,
		content:  content,
		category: category,
		extra:    cloneStringMap(extra),
	}, nil
}

// FromFields builds a Document from a parsed key/value record.
// Recognized keys map to typed fields; everything else lands in Extra.
func FromFields(fields map[string]string) (Document, error) {
	var extra map[string]string
	for k, v := range fields {
		switch k {
		case KeyID, KeyTitle, KeyContent, KeyCategory:
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return New(fields[KeyID], fields[KeyTitle], fields[KeyContent], fields[KeyCategory], extra)
}

// Reconstruct creates a Document without validation (test and cache hydration).
func Reconstruct(id, title, content, category string, extra map[string]string, vector []float32) Document {
	return Document{
		id: id, title: title, content: content, category: category,
		extra: cloneStringMap(extra), vector: slices.Clone(vector),
	}
}

// ID returns the record identifier.
func (d *Document) ID() string { return d.id }

// Title returns the law title (baslik).
func (d *Document) Title() string { return d.title }

// Content returns the article text (icerik).
func (d *Document) Content() string { return d.content }

// Category returns the category tag (kategori).
func (d *Document) Category() string { return d.category }

// Extra returns a copy of the unrecognized record fields. Documents are
// shared by concurrent searches, so callers never get the backing map.
func (d *Document) Extra() map[string]string { return cloneStringMap(d.extra) }

// Vector returns the cached embedding, nil when none was computed.
func (d *Document) Vector() []float32 { return d.vector }

// HasVector reports whether an embedding is cached on the document.
func (d *Document) HasVector() bool { return len(d.vector) > 0 }

// Text returns the text both similarity backends score: content, a space, then title.
func (d *Document) Text() string { return d.content + " " + d.title }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{
		id: d.id, title: d.title, content: d.content, category: d.category,
		extra: cloneStringMap(d.extra), vector: v,
	}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
