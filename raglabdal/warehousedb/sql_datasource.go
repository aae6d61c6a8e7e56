package warehousedb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jmoiron/sqlx"
)

var _ raglabdal.DataSourceConn = &WarehouseSQLDB{}

type WarehouseSQLDB struct {
	name string
	db   *sqlx.DB
}

func NewWarehouseSQLDB(db *sqlx.DB, name string) *WarehouseSQLDB {
	return &WarehouseSQLDB{
		name: name,
		db:   db,
	}
}

func (db *WarehouseSQLDB) Name() string {
	return db.name
}

func (db *WarehouseSQLDB) DatasetInfo() (*raglab.DatasetInfo, errorsx.Error) {
	row := db.db.QueryRow(`
		SELECT
			source_dataset,
			doc_count,
			chunk_count,
			chunk_size,
			chunk_overlap,
			created_at
		FROM dataset_info
		ORDER BY created_at DESC
		LIMIT 1`)
	if row.Err() != nil {
		return nil, errorsx.Wrap(row.Err())
	}

	var createdAt time.Time
	datasetInfo := new(raglab.DatasetInfo)
	err := row.Scan(
		&datasetInfo.SourceDataset,
		&datasetInfo.DocCount,
		&datasetInfo.ChunkCount,
		&datasetInfo.ChunkSize,
		&datasetInfo.ChunkOverlap,
		&createdAt)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	datasetInfo.CreatedAtMs = uint64(createdAt.UnixNano() / (1000 * 1000))

	return datasetInfo, nil
}

// buildWhereClause renders a ChunkFilter as a WHERE fragment with $n
// placeholders, starting from $1.
func buildWhereClause(filter *raglabdal.ChunkFilter) (string, []interface{}) {
	if filter.IsEmpty() {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if filter.Source != "" {
		args = append(args, filter.Source)
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.DocID != "" {
		args = append(args, filter.DocID)
		conditions = append(conditions, fmt.Sprintf("doc_id = $%d", len(args)))
	}
	if filter.MinChunkIndex > 0 {
		args = append(args, filter.MinChunkIndex)
		conditions = append(conditions, fmt.Sprintf("chunk_index >= $%d", len(args)))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (db *WarehouseSQLDB) ChunkRefs(ctx context.Context, filter *raglabdal.ChunkFilter, limit int64) ([]*raglab.ChunkRef, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	query := "SELECT chunk_id, doc_id FROM chunks" + whereClause
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}
	defer rows.Close()

	var refs []*raglab.ChunkRef
	for rows.Next() {
		ref := new(raglab.ChunkRef)
		err = rows.Scan(&ref.ChunkID, &ref.DocID)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		refs = append(refs, ref)
	}

	if rows.Err() != nil {
		return nil, errorsx.Wrap(rows.Err())
	}

	return refs, nil
}

func (db *WarehouseSQLDB) CountChunks(ctx context.Context, filter *raglabdal.ChunkFilter) (int64, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	var count int64
	err := db.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM chunks"+whereClause, args...)
	if err != nil {
		return 0, errorsx.Wrap(err)
	}

	return count, nil
}

func (db *WarehouseSQLDB) SourceDistribution(ctx context.Context) ([]*raglab.SourceCount, errorsx.Error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT source, COUNT(*) FROM chunks GROUP BY source ORDER BY COUNT(*) DESC, source ASC")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer rows.Close()

	var sourceCounts []*raglab.SourceCount
	for rows.Next() {
		sourceCount := new(raglab.SourceCount)
		err = rows.Scan(&sourceCount.Source, &sourceCount.NumChunks)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		sourceCounts = append(sourceCounts, sourceCount)
	}

	if rows.Err() != nil {
		return nil, errorsx.Wrap(rows.Err())
	}

	return sourceCounts, nil
}

func (db *WarehouseSQLDB) TextLengthStats(ctx context.Context, filter *raglabdal.ChunkFilter) (*raglab.TextLengthStats, errorsx.Error) {
	whereClause, args := buildWhereClause(filter)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(LENGTH(text)), 0),
			COALESCE(MIN(LENGTH(text)), 0),
			COALESCE(MAX(LENGTH(text)), 0)
		FROM chunks` + whereClause

	row := db.db.QueryRowContext(ctx, query, args...)
	if row.Err() != nil {
		return nil, errorsx.Wrap(row.Err())
	}

	stats := new(raglab.TextLengthStats)
	err := row.Scan(&stats.Count, &stats.TotalChars, &stats.MinChars, &stats.MaxChars)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return stats, nil
}

func (db *WarehouseSQLDB) TopDocsByChunkCount(ctx context.Context, n int) ([]*raglab.DocChunkCount, errorsx.Error) {
	query := "SELECT doc_id, COUNT(*) FROM chunks GROUP BY doc_id ORDER BY COUNT(*) DESC, doc_id ASC"
	if n > 0 {
		query += fmt.Sprintf(" LIMIT %d", n)
	}

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer rows.Close()

	var docCounts []*raglab.DocChunkCount
	for rows.Next() {
		docCount := new(raglab.DocChunkCount)
		err = rows.Scan(&docCount.DocID, &docCount.NumChunks)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		docCounts = append(docCounts, docCount)
	}

	if rows.Err() != nil {
		return nil, errorsx.Wrap(rows.Err())
	}

	return docCounts, nil
}

func (db *WarehouseSQLDB) ChunksByID(ctx context.Context, chunkIDs []string) ([]*raglab.Chunk, errorsx.Error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		"SELECT chunk_id, doc_id, title, chunk_index, char_start, char_end, text, source FROM chunks WHERE chunk_id IN (?)",
		chunkIDs)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	query = db.db.Rebind(query)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "query", query)
	}
	defer rows.Close()

	chunksByID := make(map[string]*raglab.Chunk)
	for rows.Next() {
		chunk := new(raglab.Chunk)
		err = rows.Scan(
			&chunk.ChunkID, &chunk.DocID, &chunk.Title, &chunk.ChunkIndex,
			&chunk.CharStart, &chunk.CharEnd, &chunk.Text, &chunk.Source)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		chunksByID[chunk.ChunkID] = chunk
	}

	if rows.Err() != nil {
		return nil, errorsx.Wrap(rows.Err())
	}

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
