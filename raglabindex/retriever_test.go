package raglabindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDataSourceConn struct {
	chunksByID map[string]*raglab.Chunk
	order      []string
}

func newMockDataSourceConn(chunks []*raglab.Chunk) *mockDataSourceConn {
	conn := &mockDataSourceConn{chunksByID: make(map[string]*raglab.Chunk)}
	for _, chunk := range chunks {
		conn.chunksByID[chunk.ChunkID] = chunk
		conn.order = append(conn.order, chunk.ChunkID)
	}
	return conn
}

func (c *mockDataSourceConn) Name() string {
	return "mock"
}

func (c *mockDataSourceConn) DatasetInfo() (*raglab.DatasetInfo, errorsx.Error) {
	return &raglab.DatasetInfo{ChunkCount: int64(len(c.order))}, nil
}

func (c *mockDataSourceConn) ChunkRefs(ctx context.Context, filter *raglabdal.ChunkFilter, limit int64) ([]*raglab.ChunkRef, errorsx.Error) {
	var refs []*raglab.ChunkRef
	for _, chunkID := range c.order {
		chunk := c.chunksByID[chunkID]
		refs = append(refs, &raglab.ChunkRef{ChunkID: chunk.ChunkID, DocID: chunk.DocID})
		if limit > 0 && int64(len(refs)) == limit {
			break
		}
	}
	return refs, nil
}

func (c *mockDataSourceConn) CountChunks(ctx context.Context, filter *raglabdal.ChunkFilter) (int64, errorsx.Error) {
	return int64(len(c.order)), nil
}

func (c *mockDataSourceConn) SourceDistribution(ctx context.Context) ([]*raglab.SourceCount, errorsx.Error) {
	return nil, nil
}

func (c *mockDataSourceConn) TextLengthStats(ctx context.Context, filter *raglabdal.ChunkFilter) (*raglab.TextLengthStats, errorsx.Error) {
	return new(raglab.TextLengthStats), nil
}

func (c *mockDataSourceConn) TopDocsByChunkCount(ctx context.Context, n int) ([]*raglab.DocChunkCount, errorsx.Error) {
	return nil, nil
}

func (c *mockDataSourceConn) ChunksByID(ctx context.Context, chunkIDs []string) ([]*raglab.Chunk, errorsx.Error) {
	var chunks []*raglab.Chunk
	for _, chunkID := range chunkIDs {
		chunk, ok := c.chunksByID[chunkID]
		if !ok {
			return nil, errorsx.Wrap(errorsx.ObjectNotFound, "chunkID", chunkID)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func Test_dedupeHits(t *testing.T) {
	// d1 and d2 share a title, like two documents about the same subject
	hits := []*SearchHit{
		{ChunkID: "d1_c0", DocID: "d1", Title: "Beyoncé", Score: 0.9},
		{ChunkID: "d1_c1", DocID: "d1", Title: "Beyoncé", Score: 0.8},
		{ChunkID: "d2_c0", DocID: "d2", Title: "Beyoncé", Score: 0.7},
		{ChunkID: "d3_c0", DocID: "d3", Title: "Chopin", Score: 0.6},
	}

	kept := dedupeHits(hits, 2, DedupeFieldDocID)
	require.Len(t, kept, 2)
	assert.Equal(t, "d1_c0", kept[0].ChunkID)
	assert.Equal(t, "d2_c0", kept[1].ChunkID)

	kept = dedupeHits(hits, 3, DedupeFieldTitle)
	require.Len(t, kept, 2)
	assert.Equal(t, "d1_c0", kept[0].ChunkID)
	assert.Equal(t, "d3_c0", kept[1].ChunkID)

	kept = dedupeHits(hits, 3, DedupeFieldNone)
	require.Len(t, kept, 3)
	assert.Equal(t, "d1_c1", kept[1].ChunkID)
}

func Test_DedupeField_Validate(t *testing.T) {
	require.NoError(t, DedupeFieldNone.Validate())
	require.NoError(t, DedupeFieldDocID.Validate())
	require.NoError(t, DedupeFieldTitle.Validate())
	require.Error(t, DedupeField("chunk_length").Validate())
}

func Test_Retriever_Retrieve(t *testing.T) {
	embedder := NewLocalEmbedder(32)
	ctx := context.Background()

	chunks := []*raglab.Chunk{
		{ChunkID: "d1_c0", DocID: "d1", Text: "paris is the capital of france", Source: "squad_v2"},
		{ChunkID: "d1_c1", DocID: "d1", Text: "france is in western europe", Source: "squad_v2"},
		{ChunkID: "d2_c0", DocID: "d2", Text: "the capital of spain is madrid", Source: "squad_v2"},
		{ChunkID: "d3_c0", DocID: "d3", Text: "gophers dig burrows in the ground", Source: "hotpot"},
	}
	conn := newMockDataSourceConn(chunks)

	index, meta, err := Build(ctx, testLogger(), conn, embedder, DefaultBuildOptions())
	require.NoError(t, err)
	require.Equal(t, len(chunks), index.Len())
	require.Len(t, meta.ChunkIDs, 0) // meta IDs are filled in by Save

	retriever := NewRetriever(index, embedder, conn)

	retrieved, err := retriever.Retrieve(ctx, "what is the capital of france", 2, DefaultRetrieveOptions())
	require.NoError(t, err)

	require.Len(t, retrieved, 2)
	assert.Equal(t, "d1_c0", retrieved[0].Chunk.ChunkID)
	// with doc dedupe on, the second hit must come from another document
	assert.NotEqual(t, "d1", retrieved[1].Chunk.DocID)
	assert.Greater(t, retrieved[0].Score, retrieved[1].Score)
}

func Test_Build_BatchSizes(t *testing.T) {
	embedder := NewLocalEmbedder(8)
	ctx := context.Background()

	var chunks []*raglab.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, &raglab.Chunk{
			ChunkID: fmt.Sprintf("d1_c%d", i),
			DocID:   "d1",
			Text:    fmt.Sprintf("chunk number %d", i),
		})
	}
	conn := newMockDataSourceConn(chunks)

	opts := DefaultBuildOptions()
	opts.BatchSize = 3

	index, _, err := Build(ctx, testLogger(), conn, embedder, opts)
	require.NoError(t, err)
	assert.Equal(t, 10, index.Len())

	// chunk order is preserved across batches
	hits, err := index.Search(mustEmbedOne(t, embedder, "chunk number 0"), 1)
	require.NoError(t, err)
	assert.Equal(t, "d1_c0", hits[0].ChunkID)
}

func mustEmbedOne(t *testing.T, embedder Embedder, text string) []float32 {
	vectors, err := embedder.EmbedBatch(context.Background(), []string{text})
	require.NoError(t, err)
	return vectors[0]
}
