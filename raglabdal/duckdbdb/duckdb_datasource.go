package duckdbdb

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jamesrr39/raglab/raglabdal/parquetdb"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"
)

var _ raglabdal.DataSourceConn = &DuckDBDataSourceConn{}

// DuckDBDataSourceConn runs the analytic operations through an in-process
// DuckDB instance reading the same chunks parquet file the pure-go engine
// reads. DuckDB does its own projection and filter pushdown, so this is also
// a cross-check for the engine's results.
type DuckDBDataSourceConn struct {
	DirPath        string
	DatasetInfoObj *raglab.DatasetInfo
	DBConn         *sqlx.DB
}

func NewDuckDBDataSourceConn(fs gofs.Fs, dirPath string) (*DuckDBDataSourceConn, errorsx.Error) {
	datasourceFile, err := fs.Open(filepath.Join(dirPath, parquetdb.DatasetInfoFileName))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer datasourceFile.Close()

	datasourceObj := new(raglab.DatasetInfo)

	err = json.NewDecoder(datasourceFile).Decode(datasourceObj)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	dbConn, err := sqlx.Open("duckdb", "")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	// read_parquet lives in the parquet extension, which is not loaded in a
	// fresh in-memory database
	_, err = dbConn.Exec("INSTALL parquet; LOAD parquet;")
	if err != nil {
		dbConn.Close()
		return nil, errorsx.Wrap(err, "hint", "loading the duckdb parquet extension failed")
	}

	return &DuckDBDataSourceConn{
		DirPath:        dirPath,
		DatasetInfoObj: datasourceObj,
		DBConn:         dbConn,
	}, nil
}

func (ds *DuckDBDataSourceConn) Name() string {
	return fmt.Sprintf("duckdb://%s", ds.DirPath)
}

func (ds *DuckDBDataSourceConn) DatasetInfo() (*raglab.DatasetInfo, errorsx.Error) {
	return ds.DatasetInfoObj, nil
}

func (ds *DuckDBDataSourceConn) chunksTableExpr() string {
	return fmt.Sprintf("read_parquet('%s')", filepath.Join(ds.DirPath, parquetdb.ChunksFileName))
}

// buildWhereClause renders a ChunkFilter as a WHERE fragment with positional
// args. An empty filter produces an empty fragment.
func buildWhereClause(filter *raglabdal.ChunkFilter) (string, []interface{}) {
	if filter.IsEmpty() {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.DocID != "" {
		conditions = append(conditions, "doc_id = ?")
		args = append(args, filter.DocID)
	}
	if filter.MinChunkIndex > 0 {
		conditions = append(conditions, "chunk_index >= ?")
		args = append(args, filter.MinChunkIndex)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (ds *DuckDBDataSourceConn) ChunkRefs(ctx context.Context, filter *raglabdal.ChunkFilter, limit int64) ([]*raglab.ChunkRef, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	query := fmt.Sprintf("SELECT chunk_id, doc_id FROM %s%s", ds.chunksTableExpr(), whereClause)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	type resultType struct {
		ChunkID string `db:"chunk_id"`
		DocID   string `db:"doc_id"`
	}
	var results []resultType
	err := ds.DBConn.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	var refs []*raglab.ChunkRef
	for _, result := range results {
		refs = append(refs, &raglab.ChunkRef{ChunkID: result.ChunkID, DocID: result.DocID})
	}

	return refs, nil
}

func (ds *DuckDBDataSourceConn) CountChunks(ctx context.Context, filter *raglabdal.ChunkFilter) (int64, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", ds.chunksTableExpr(), whereClause)

	var count int64
	err := ds.DBConn.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, errorsx.Wrap(err, "query", query)
	}

	return count, nil
}

func (ds *DuckDBDataSourceConn) SourceDistribution(ctx context.Context) ([]*raglab.SourceCount, errorsx.Error) {
	query := fmt.Sprintf(
		"SELECT source, COUNT(*) AS num_chunks FROM %s GROUP BY source ORDER BY num_chunks DESC, source ASC",
		ds.chunksTableExpr())

	type resultType struct {
		Source    string `db:"source"`
		NumChunks int64  `db:"num_chunks"`
	}
	var results []resultType
	err := ds.DBConn.SelectContext(ctx, &results, query)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	var sourceCounts []*raglab.SourceCount
	for _, result := range results {
		sourceCounts = append(sourceCounts, &raglab.SourceCount{Source: result.Source, NumChunks: result.NumChunks})
	}

	return sourceCounts, nil
}

func (ds *DuckDBDataSourceConn) TextLengthStats(ctx context.Context, filter *raglabdal.ChunkFilter) (*raglab.TextLengthStats, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	query := fmt.Sprintf(
		"SELECT COUNT(*) AS count, COALESCE(SUM(LENGTH(text)), 0) AS total_chars, COALESCE(MIN(LENGTH(text)), 0) AS min_chars, COALESCE(MAX(LENGTH(text)), 0) AS max_chars FROM %s%s",
		ds.chunksTableExpr(), whereClause)

	type resultType struct {
		Count      int64 `db:"count"`
		TotalChars int64 `db:"total_chars"`
		MinChars   int64 `db:"min_chars"`
		MaxChars   int64 `db:"max_chars"`
	}
	result := new(resultType)
	err := ds.DBConn.GetContext(ctx, result, query, args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	return &raglab.TextLengthStats{
		Count:      result.Count,
		TotalChars: result.TotalChars,
		MinChars:   result.MinChars,
		MaxChars:   result.MaxChars,
	}, nil
}

func (ds *DuckDBDataSourceConn) TopDocsByChunkCount(ctx context.Context, n int) ([]*raglab.DocChunkCount, errorsx.Error) {
	query := fmt.Sprintf(
		"SELECT doc_id, COUNT(*) AS num_chunks FROM %s GROUP BY doc_id ORDER BY num_chunks DESC, doc_id ASC",
		ds.chunksTableExpr())
	if n > 0 {
		query += fmt.Sprintf(" LIMIT %d", n)
	}

	type resultType struct {
		DocID     string `db:"doc_id"`
		NumChunks int64  `db:"num_chunks"`
	}
	var results []resultType
	err := ds.DBConn.SelectContext(ctx, &results, query)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	var docCounts []*raglab.DocChunkCount
	for _, result := range results {
		docCounts = append(docCounts, &raglab.DocChunkCount{DocID: result.DocID, NumChunks: result.NumChunks})
	}

	return docCounts, nil
}

func (ds *DuckDBDataSourceConn) ChunksByID(ctx context.Context, chunkIDs []string) ([]*raglab.Chunk, errorsx.Error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT chunk_id, doc_id, title, chunk_index, char_start, char_end, text, source FROM %s WHERE chunk_id IN (?)", ds.chunksTableExpr()),
		chunkIDs)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	type resultType struct {
		ChunkID    string `db:"chunk_id"`
		DocID      string `db:"doc_id"`
		Title      string `db:"title"`
		ChunkIndex int64  `db:"chunk_index"`
		CharStart  int64  `db:"char_start"`
		CharEnd    int64  `db:"char_end"`
		Text       string `db:"text"`
		Source     string `db:"source"`
	}
	var results []resultType
	err = ds.DBConn.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}

	chunksByID := make(map[string]*raglab.Chunk, len(results))
	for _, result := range results {
		chunksByID[result.ChunkID] = &raglab.Chunk{
			ChunkID:    result.ChunkID,
			DocID:      result.DocID,
			Title:      result.Title,
			ChunkIndex: result.ChunkIndex,
			CharStart:  result.CharStart,
			CharEnd:    result.CharEnd,
			Text:       result.Text,
			Source:     result.Source,
		}
	}

	// keep the requested order
	var chunks []*raglab.Chunk
	for _, chunkID := range chunkIDs {
		chunk, ok := chunksByID[chunkID]
		if !ok {
			return nil, errorsx.Wrap(errorsx.ObjectNotFound, "chunkID", chunkID)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func (ds *DuckDBDataSourceConn) Close() errorsx.Error {
	err := ds.DBConn.Close()
	if err != nil {
		return errorsx.Wrap(err)
	}
	return nil
}
