package raglabindex

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
)

const (
	DefaultCandidateMultiplier = 4
)

// DedupeField names the hit attribute deduplication groups by.
type DedupeField string

const (
	DedupeFieldNone  DedupeField = ""
	DedupeFieldDocID DedupeField = "doc_id"
	DedupeFieldTitle DedupeField = "title"
)

func (f DedupeField) Validate() errorsx.Error {
	switch f {
	case DedupeFieldNone, DedupeFieldDocID, DedupeFieldTitle:
		return nil
	}

	return errorsx.Errorf("unrecognised dedupe field: %q", f)
}

type RetrieveOptions struct {
	// CandidateMultiplier controls how many candidates are pulled from the
	// index before deduplication: k * CandidateMultiplier.
	CandidateMultiplier int
	// DedupeField keeps only the best-ranked chunk per value of this field.
	// DedupeFieldNone keeps every hit.
	DedupeField DedupeField
}

func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{
		CandidateMultiplier: DefaultCandidateMultiplier,
		DedupeField:         DedupeFieldDocID,
	}
}

type RetrievedChunk struct {
	Chunk *raglab.Chunk
	Score float32
}

// Retriever answers text queries against a built index, hydrating the hits
// back into full chunks from the datasource.
type Retriever struct {
	index    *FlatIndex
	embedder Embedder
	conn     raglabdal.DataSourceConn
}

func NewRetriever(index *FlatIndex, embedder Embedder, conn raglabdal.DataSourceConn) *Retriever {
	return &Retriever{index: index, embedder: embedder, conn: conn}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int, opts RetrieveOptions) ([]*RetrievedChunk, errorsx.Error) {
	if k <= 0 {
		return nil, errorsx.Errorf("k must be positive (got %d)", k)
	}
	if opts.CandidateMultiplier < 1 {
		opts.CandidateMultiplier = 1
	}

	err := opts.DedupeField.Validate()
	if err != nil {
		return nil, err
	}

	queryVectors, err := r.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Search(queryVectors[0], k*opts.CandidateMultiplier)
	if err != nil {
		return nil, err
	}

	hits = dedupeHits(hits, k, opts.DedupeField)

	var chunkIDs []string
	scoresByChunkID := make(map[string]float32)
	for _, hit := range hits {
		chunkIDs = append(chunkIDs, hit.ChunkID)
		scoresByChunkID[hit.ChunkID] = hit.Score
	}

	if len(chunkIDs) == 0 {
		return nil, nil
	}

	chunks, err := r.conn.ChunksByID(ctx, chunkIDs)
	if err != nil {
		return nil, err
	}

	var retrieved []*RetrievedChunk
	for _, chunk := range chunks {
		retrieved = append(retrieved, &RetrievedChunk{
			Chunk: chunk,
			Score: scoresByChunkID[chunk.ChunkID],
		})
	}

	return retrieved, nil
}

// dedupeHits keeps at most k hits, only the highest-ranked hit per value of
// dedupeField. Ranking order is preserved.
func dedupeHits(hits []*SearchHit, k int, dedupeField DedupeField) []*SearchHit {
	var kept []*SearchHit
	seenKeys := make(map[string]struct{})

	for _, hit := range hits {
		if dedupeField != DedupeFieldNone {
			var key string
			switch dedupeField {
			case DedupeFieldDocID:
				key = hit.DocID
			case DedupeFieldTitle:
				key = hit.Title
			}

			_, seen := seenKeys[key]
			if seen {
				continue
			}
			seenKeys[key] = struct{}{}
		}

		kept = append(kept, hit)
		if len(kept) == k {
			break
		}
	}

	return kept
}
