package pqetestutil

import (
	"encoding/json"
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const TestChunksSchema = `{
	"Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
	"Fields": [
		{"Tag": "name=chunk_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{"Tag": "name=doc_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{"Tag": "name=chunk_index, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=char_start, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=char_end, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=text, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{"Tag": "name=source, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"}
	]
}`

type TestChunkRow struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	ChunkIndex int64  `json:"chunk_index"`
	CharStart  int64  `json:"char_start"`
	CharEnd    int64  `json:"char_end"`
	Text       string `json:"text"`
	Source     string `json:"source"`
}

// TestChunks holds 16 rows across 4 documents. The first two documents come
// from "squad_v2", the last two from "hotpot".
var TestChunks = buildTestChunks()

func buildTestChunks() []TestChunkRow {
	sourcesByDoc := map[string]string{
		"d1": "squad_v2",
		"d2": "squad_v2",
		"d3": "hotpot",
		"d4": "hotpot",
	}

	var rows []TestChunkRow
	for _, docID := range []string{"d1", "d2", "d3", "d4"} {
		for chunkIndex := int64(0); chunkIndex < 4; chunkIndex++ {
			start := chunkIndex * 10
			rows = append(rows, TestChunkRow{
				ChunkID:    fmt.Sprintf("%s_c%d", docID, chunkIndex),
				DocID:      docID,
				ChunkIndex: chunkIndex,
				CharStart:  start,
				CharEnd:    start + 10,
				Text:       fmt.Sprintf("text of %s chunk %d", docID, chunkIndex),
				Source:     sourcesByDoc[docID],
			})
		}
	}

	return rows
}

// EnsureTestFile writes the test chunk rows to filePath with a tiny row group
// size, so even this small dataset spans several row groups, and returns a
// reader for the file.
func EnsureTestFile(filePath string) (source.ParquetFile, errorsx.Error) {
	errx := writeTestFile(filePath)
	if errx != nil {
		return nil, errx
	}

	f, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return f, nil
}

func writeTestFile(filePath string) errorsx.Error {
	f, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer f.Close()

	w, err := writer.NewJSONWriter(TestChunksSchema, f, 1)
	if err != nil {
		return errorsx.Wrap(err)
	}

	w.RowGroupSize = 512
	w.PageSize = 256
	w.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, testChunk := range TestChunks {
		testChunkJSON, err := json.Marshal(testChunk)
		if err != nil {
			return errorsx.Wrap(err)
		}

		err = w.Write(string(testChunkJSON))
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	err = w.WriteStop()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
