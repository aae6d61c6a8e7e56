package parquetdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	pqe "github.com/jamesrr39/raglab/raglabdal/parquetdb/parquetqueryengine"
	"github.com/xitongsys/parquet-go-source/local"
	parquetreader "github.com/xitongsys/parquet-go/reader"
)

// rootSchemaElementName is the mangled name of the schema root element, used
// when addressing columns by path.
const rootSchemaElementName = "Parquet_go_root"

var _ raglabdal.DataSourceConn = &ParquetDatasource{}

// ParquetDatasource answers analytic queries over a chunks parquet file using
// the pure-go query engine. Every operation opens a fresh reader, since
// column reads are stateful.
type ParquetDatasource struct {
	dirPath     string
	datasetInfo *raglab.DatasetInfo
}

func NewParquetDatasource(dirPath string) (*ParquetDatasource, errorsx.Error) {
	datasetInfoPath := filepath.Join(dirPath, DatasetInfoFileName)

	infoBytes, err := os.ReadFile(datasetInfoPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", datasetInfoPath)
	}

	datasetInfo := new(raglab.DatasetInfo)
	err = json.Unmarshal(infoBytes, datasetInfo)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", datasetInfoPath)
	}

	ds := &ParquetDatasource{
		dirPath:     dirPath,
		datasetInfo: datasetInfo,
	}

	// fail now if the chunks file is unreadable
	_, closeReader, errx := ds.openChunksReader()
	if errx != nil {
		return nil, errx
	}
	closeReader()

	return ds, nil
}

func (ds *ParquetDatasource) openChunksReader() (*parquetreader.ParquetReader, func(), errorsx.Error) {
	chunksFilePath := filepath.Join(ds.dirPath, ChunksFileName)

	fileReader, err := local.NewLocalFileReader(chunksFilePath)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "filepath", chunksFilePath)
	}

	pr, err := parquetreader.NewParquetReader(fileReader, chunksSchema, int64(runtime.NumCPU()))
	if err != nil {
		fileReader.Close()
		return nil, nil, errorsx.Wrap(err, "filepath", chunksFilePath)
	}

	closeReader := func() {
		pr.ReadStop()
		fileReader.Close()
	}

	return pr, closeReader, nil
}

func (ds *ParquetDatasource) Name() string {
	return filepath.Base(ds.dirPath)
}

func (ds *ParquetDatasource) DatasetInfo() (*raglab.DatasetInfo, errorsx.Error) {
	return ds.datasetInfo, nil
}

func (ds *ParquetDatasource) runQuery(ctx context.Context, query *pqe.Query) ([]*pqe.ResultRow, errorsx.Error) {
	if err := ctx.Err(); err != nil {
		return nil, errorsx.Wrap(err)
	}

	pr, closeReader, errx := ds.openChunksReader()
	if errx != nil {
		return nil, errx
	}
	defer closeReader()

	rows, _, errx := query.Run(pr, rootSchemaElementName)
	if errx != nil {
		return nil, errx
	}

	return rows, nil
}

// chunkFilterToEngineFilter translates a DAL-level filter into the engine's
// filter tree. An empty filter translates to nil (scan everything).
func chunkFilterToEngineFilter(filter *raglabdal.ChunkFilter) pqe.Filter {
	if filter.IsEmpty() {
		return nil
	}

	var childFilters []pqe.Filter
	if filter.Source != "" {
		childFilters = append(childFilters, &pqe.ComparativeFilter{
			FieldName: "source",
			Operator:  pqe.ComparativeOperatorEqualTo,
			Operand:   pqe.StringOperand(filter.Source),
		})
	}
	if filter.DocID != "" {
		childFilters = append(childFilters, &pqe.ComparativeFilter{
			FieldName: "doc_id",
			Operator:  pqe.ComparativeOperatorEqualTo,
			Operand:   pqe.StringOperand(filter.DocID),
		})
	}
	if filter.MinChunkIndex > 0 {
		childFilters = append(childFilters, &pqe.ComparativeFilter{
			FieldName: "chunk_index",
			Operator:  pqe.ComparativeOperatorGreaterThanOrEqualTo,
			Operand:   pqe.Int64Operand(filter.MinChunkIndex),
		})
	}

	if len(childFilters) == 1 {
		return childFilters[0]
	}

	return &pqe.LogicalFilter{
		Operator:     pqe.LogicalFilterOperatorAnd,
		ChildFilters: childFilters,
	}
}

func (ds *ParquetDatasource) ChunkRefs(ctx context.Context, filter *raglabdal.ChunkFilter, limit int64) ([]*raglab.ChunkRef, errorsx.Error) {
	query := &pqe.Query{
		Select: []string{"chunk_id", "doc_id"},
		Where:  chunkFilterToEngineFilter(filter),
		Limit:  limit,
	}

	rows, err := ds.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var refs []*raglab.ChunkRef
	for _, row := range rows {
		chunkID, ok := (*row)[0].(string)
		if !ok {
			return nil, errorsx.Errorf("expected a string chunk_id but got %T", (*row)[0])
		}
		docID, ok := (*row)[1].(string)
		if !ok {
			return nil, errorsx.Errorf("expected a string doc_id but got %T", (*row)[1])
		}

		refs = append(refs, &raglab.ChunkRef{ChunkID: chunkID, DocID: docID})
	}

	return refs, nil
}

func (ds *ParquetDatasource) CountChunks(ctx context.Context, filter *raglabdal.ChunkFilter) (int64, errorsx.Error) {
	if filter.IsEmpty() {
		// no filter: the row count is in the file metadata, no scan needed
		pr, closeReader, err := ds.openChunksReader()
		if err != nil {
			return 0, err
		}
		defer closeReader()

		return pr.GetNumRows(), nil
	}

	// count over the narrowest filtered column rather than fetching chunk
	// texts
	query := &pqe.Query{
		Select: []string{"chunk_id"},
		Where:  chunkFilterToEngineFilter(filter),
	}

	rows, err := ds.runQuery(ctx, query)
	if err != nil {
		return 0, err
	}

	return int64(len(rows)), nil
}

func (ds *ParquetDatasource) SourceDistribution(ctx context.Context) ([]*raglab.SourceCount, errorsx.Error) {
	query := &pqe.Query{
		Select: []string{"source"},
	}

	rows, err := ds.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	countsBySource := make(map[string]int64)
	for _, row := range rows {
		source, ok := (*row)[0].(string)
		if !ok {
			return nil, errorsx.Errorf("expected a string source but got %T", (*row)[0])
		}
		countsBySource[source]++
	}

	var sourceCounts []*raglab.SourceCount
	for source, numChunks := range countsBySource {
		sourceCounts = append(sourceCounts, &raglab.SourceCount{Source: source, NumChunks: numChunks})
	}

	sort.Slice(sourceCounts, func(i, j int) bool {
		if sourceCounts[i].NumChunks != sourceCounts[j].NumChunks {
			return sourceCounts[i].NumChunks > sourceCounts[j].NumChunks
		}
		return sourceCounts[i].Source < sourceCounts[j].Source
	})

	return sourceCounts, nil
}

func (ds *ParquetDatasource) TextLengthStats(ctx context.Context, filter *raglabdal.ChunkFilter) (*raglab.TextLengthStats, errorsx.Error) {
	query := &pqe.Query{
		Select: []string{"text"},
		Where:  chunkFilterToEngineFilter(filter),
	}

	rows, err := ds.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	stats := new(raglab.TextLengthStats)
	for _, row := range rows {
		text, ok := (*row)[0].(string)
		if !ok {
			return nil, errorsx.Errorf("expected a string text but got %T", (*row)[0])
		}
		stats.Add(len(text))
	}

	return stats, nil
}

func (ds *ParquetDatasource) TopDocsByChunkCount(ctx context.Context, n int) ([]*raglab.DocChunkCount, errorsx.Error) {
	query := &pqe.Query{
		Select: []string{"doc_id"},
	}

	rows, err := ds.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	countsByDoc := make(map[string]int64)
	for _, row := range rows {
		docID, ok := (*row)[0].(string)
		if !ok {
			return nil, errorsx.Errorf("expected a string doc_id but got %T", (*row)[0])
		}
		countsByDoc[docID]++
	}

	var docCounts []*raglab.DocChunkCount
	for docID, numChunks := range countsByDoc {
		docCounts = append(docCounts, &raglab.DocChunkCount{DocID: docID, NumChunks: numChunks})
	}

	sort.Slice(docCounts, func(i, j int) bool {
		if docCounts[i].NumChunks != docCounts[j].NumChunks {
			return docCounts[i].NumChunks > docCounts[j].NumChunks
		}
		return docCounts[i].DocID < docCounts[j].DocID
	})

	if n > 0 && len(docCounts) > n {
		docCounts = docCounts[:n]
	}

	return docCounts, nil
}

func (ds *ParquetDatasource) ChunksByID(ctx context.Context, chunkIDs []string) ([]*raglab.Chunk, errorsx.Error) {
	var chunks []*raglab.Chunk
	for _, chunkID := range chunkIDs {
		query := &pqe.Query{
			Select: []string{"chunk_id", "doc_id", "title", "chunk_index", "char_start", "char_end", "text", "source"},
			Where: &pqe.ComparativeFilter{
				FieldName: "chunk_id",
				Operator:  pqe.ComparativeOperatorEqualTo,
				Operand:   pqe.StringOperand(chunkID),
			},
			Limit: 1,
		}

		rows, err := ds.runQuery(ctx, query)
		if err != nil {
			return nil, err
		}

		if len(rows) == 0 {
			return nil, errorsx.Wrap(errorsx.ObjectNotFound, "chunkID", chunkID)
		}

		chunk, err := resultRowToChunk(rows[0])
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func resultRowToChunk(row *pqe.ResultRow) (*raglab.Chunk, errorsx.Error) {
	if len(*row) != 8 {
		return nil, errorsx.Errorf("expected 8 columns in chunk row but got %d", len(*row))
	}

	chunk := new(raglab.Chunk)
	fields := []struct {
		strTarget *string
		intTarget *int64
	}{
		{strTarget: &chunk.ChunkID},
		{strTarget: &chunk.DocID},
		{strTarget: &chunk.Title},
		{intTarget: &chunk.ChunkIndex},
		{intTarget: &chunk.CharStart},
		{intTarget: &chunk.CharEnd},
		{strTarget: &chunk.Text},
		{strTarget: &chunk.Source},
	}

	for i, field := range fields {
		value := (*row)[i]
		if field.strTarget != nil {
			strVal, ok := value.(string)
			if !ok {
				return nil, errorsx.Errorf("column %d: expected a string but got %T", i, value)
			}
			*field.strTarget = strVal
		} else {
			intVal, ok := value.(int64)
			if !ok {
				return nil, errorsx.Errorf("column %d: expected an int64 but got %T", i, value)
			}
			*field.intTarget = intVal
		}
	}

	return chunk, nil
}
