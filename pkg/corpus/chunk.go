// Package corpus models scraped course material and splits it into
// bounded retrievable chunks.
package corpus

import "strings"

// Source is one scraped document, typically a single course page or file.
type Source struct {
	// ID uniquely identifies the source within the corpus.
	ID string `json:"id"`

	// Name is the human-readable source name shown alongside results.
	Name string `json:"name"`

	// Sections are the source's text sections in document order.
	Sections []string `json:"sections"`
}

// Text returns the source's sections joined into a single blob.
func (s Source) Text() string {
	return strings.Join(s.Sections, "\n\n")
}

// Chunk is a bounded, contiguous excerpt of a source document, numbered
// within its source. Chunks are immutable once produced.
type Chunk struct {
	Text          string `json:"text"`
	SourceID      string `json:"source_id"`
	SourceName    string `json:"source_name"`
	Ordinal       int    `json:"ordinal"`
	TotalInSource int    `json:"total_in_source"`
}
