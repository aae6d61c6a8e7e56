package raglab

import (
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

type ChunkOptions struct {
	Size    int
	Overlap int
}

func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		Size:    DefaultChunkSize,
		Overlap: DefaultChunkOverlap,
	}
}

func (o ChunkOptions) Validate() errorsx.Error {
	if o.Size <= 0 {
		return errorsx.Errorf("chunk size must be positive (got %d)", o.Size)
	}

	if o.Overlap < 0 {
		return errorsx.Errorf("chunk overlap must not be negative (got %d)", o.Overlap)
	}

	if o.Overlap >= o.Size {
		return errorsx.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", o.Overlap, o.Size)
	}

	return nil
}

// ChunkDocument splits a document's text into overlapping character windows.
// Consecutive chunks share the last `Overlap` characters of the previous
// chunk, so retrieval doesn't lose context at window edges. A document whose
// text is empty after trimming produces no chunks.
func ChunkDocument(doc *Document, opts ChunkOptions) ([]*Chunk, errorsx.Error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, nil
	}

	var chunks []*Chunk

	runes := []rune(text)
	n := len(runes)
	start := 0
	for start < n {
		end := start + opts.Size
		if end > n {
			end = n
		}

		index := int64(len(chunks))
		chunks = append(chunks, &Chunk{
			ChunkID:    fmt.Sprintf("%s_c%d", doc.DocID, index),
			DocID:      doc.DocID,
			Title:      doc.Title,
			ChunkIndex: index,
			CharStart:  int64(start),
			CharEnd:    int64(end),
			Text:       string(runes[start:end]),
			Source:     doc.Source,
		})

		if end == n {
			break
		}
		start = end - opts.Overlap
	}

	return chunks, nil
}
