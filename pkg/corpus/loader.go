package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir reads a corpus directory produced by the course scraper. Every
// .txt and .md file (recursively) becomes one Source: the relative path is
// the source ID, the base name without extension is the source name, and
// blank-line separated blocks become the source's sections.
//
// Files are returned in sorted path order so repeated loads of the same
// directory produce the same corpus.
func LoadDir(dir string) ([]Source, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory %s: %w", dir, err)
	}

	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))

		sources = append(sources, Source{
			ID:       filepath.ToSlash(rel),
			Name:     name,
			Sections: splitSections(text),
		})
	}

	return sources, nil
}

// splitSections splits a text blob on blank lines into trimmed, non-empty
// sections.
func splitSections(text string) []string {
	parts := strings.Split(text, "\n\n")
	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}
