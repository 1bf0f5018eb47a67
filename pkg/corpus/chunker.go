package corpus

import "strings"

// DefaultChunkWords is the default number of whitespace-delimited words
// per chunk.
const DefaultChunkWords = 500

// SplitWords splits text on whitespace boundaries into groups of up to size
// words, preserving the original word order. Empty and whitespace-only input
// yields no groups. A size of zero or less falls back to DefaultChunkWords.
//
// Re-splitting the returned groups on whitespace reproduces the word sequence
// of the input exactly: no word is dropped, duplicated, or reordered.
func SplitWords(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	groups := make([]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		groups = append(groups, strings.Join(words[start:end], " "))
	}

	return groups
}

// ChunkSource splits one source document into ordered chunks tagged with the
// source's metadata. Ordinals count from 0 and every chunk records the total
// chunk count of its source. Chunks never cross a source boundary.
func ChunkSource(src Source, size int) []Chunk {
	groups := SplitWords(src.Text(), size)
	if len(groups) == 0 {
		return nil
	}

	chunks := make([]Chunk, len(groups))
	for i, text := range groups {
		chunks[i] = Chunk{
			Text:          text,
			SourceID:      src.ID,
			SourceName:    src.Name,
			Ordinal:       i,
			TotalInSource: len(groups),
		}
	}

	return chunks
}
