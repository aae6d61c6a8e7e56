package duckdbdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jamesrr39/raglab/raglabdal/parquetdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildWhereClause(t *testing.T) {
	tests := []struct {
		name       string
		filter     *raglabdal.ChunkFilter
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "nil filter",
			filter:     nil,
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "source only",
			filter:     &raglabdal.ChunkFilter{Source: "squad_v2"},
			wantClause: " WHERE source = ?",
			wantArgs:   []interface{}{"squad_v2"},
		},
		{
			name:       "all fields",
			filter:     &raglabdal.ChunkFilter{Source: "squad_v2", DocID: "d1", MinChunkIndex: 3},
			wantClause: " WHERE source = ? AND doc_id = ? AND chunk_index >= ?",
			wantArgs:   []interface{}{"squad_v2", "d1", int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClause, gotArgs := buildWhereClause(tt.filter)
			assert.Equal(t, tt.wantClause, gotClause)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func setupTestDataSourceConn(t *testing.T) *DuckDBDataSourceConn {
	dirPath := t.TempDir()

	importer, err := parquetdb.NewImporter(dirPath, 1, parquetdb.DefaultRowGroupSize)
	require.NoError(t, err)

	var chunks []*raglab.Chunk
	addDoc := func(docID, source string, numChunks int) {
		for i := 0; i < numChunks; i++ {
			start := int64(i * 10)
			chunks = append(chunks, &raglab.Chunk{
				ChunkID:    fmt.Sprintf("%s_c%d", docID, i),
				DocID:      docID,
				Title:      "title of " + docID,
				ChunkIndex: int64(i),
				CharStart:  start,
				CharEnd:    start + 10,
				Text:       fmt.Sprintf("text of %s chunk %d", docID, i),
				Source:     source,
			})
		}
	}

	addDoc("d1", "squad_v2", 3)
	addDoc("d2", "hotpot", 2)

	err = importer.ImportChunks(chunks)
	require.NoError(t, err)

	_, err = importer.Commit(&raglab.DatasetInfo{
		SourceDataset: "squad_v2",
		DocCount:      2,
		ChunkCount:    int64(len(chunks)),
		ChunkSize:     800,
		ChunkOverlap:  150,
	})
	require.NoError(t, err)

	conn, err := NewDuckDBDataSourceConn(gofs.NewOsFs(), dirPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

func Test_DuckDBDataSourceConn_CountChunks(t *testing.T) {
	conn := setupTestDataSourceConn(t)
	ctx := context.Background()

	count, err := conn.CountChunks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	count, err = conn.CountChunks(ctx, &raglabdal.ChunkFilter{Source: "squad_v2"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = conn.CountChunks(ctx, &raglabdal.ChunkFilter{Source: "squad_v2", MinChunkIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_DuckDBDataSourceConn_SourceDistribution(t *testing.T) {
	conn := setupTestDataSourceConn(t)

	sourceCounts, err := conn.SourceDistribution(context.Background())
	require.NoError(t, err)

	expected := []*raglab.SourceCount{
		{Source: "squad_v2", NumChunks: 3},
		{Source: "hotpot", NumChunks: 2},
	}
	assert.Equal(t, expected, sourceCounts)
}

func Test_DuckDBDataSourceConn_ChunksByID(t *testing.T) {
	conn := setupTestDataSourceConn(t)

	chunks, err := conn.ChunksByID(context.Background(), []string{"d2_c1", "d1_c0"})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "d2_c1", chunks[0].ChunkID)
	assert.Equal(t, "text of d2 chunk 1", chunks[0].Text)
	assert.Equal(t, "d1_c0", chunks[1].ChunkID)

	_, err = conn.ChunksByID(context.Background(), []string{"no_such_chunk"})
	require.Error(t, err)
}
