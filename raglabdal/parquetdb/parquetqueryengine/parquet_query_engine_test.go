package parquetqueryengine

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jamesrr39/raglab/raglabdal/parquetdb/parquetqueryengine/pqetestutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/reader"
)

const testRootSchemaElementName = "Parquet_go_root"

func setupTestReader(t *testing.T) *reader.ParquetReader {
	f, err := pqetestutil.EnsureTestFile(filepath.Join(t.TempDir(), "chunks.parquet"))
	require.NoError(t, err)
	t.Cleanup(func() {
		f.Close()
	})

	parquetReader, plainErr := reader.NewParquetReader(f, pqetestutil.TestChunksSchema, int64(runtime.NumCPU()))
	require.NoError(t, plainErr)

	return parquetReader
}

func Test_Run_EqualityOnString(t *testing.T) {
	parquetReader := setupTestReader(t)

	query := &Query{
		Select: []string{"chunk_id", "doc_id"},
		Where: &ComparativeFilter{
			FieldName: "source",
			Operator:  ComparativeOperatorEqualTo,
			Operand:   StringOperand("squad_v2"),
		},
	}

	results, stats, runErr := query.Run(parquetReader, testRootSchemaElementName)
	require.NoError(t, runErr)

	require.Len(t, results, 8)

	// file order is preserved
	assert.Equal(t, &ResultRow{"d1_c0", "d1"}, results[0])
	assert.Equal(t, &ResultRow{"d2_c3", "d2"}, results[7])

	for _, result := range results {
		assert.Contains(t, []interface{}{"d1", "d2"}, (*result)[1])
	}

	// only the filter column and the two SELECT columns were read
	assert.Equal(t, 3, stats.ColumnsRead)
	assert.LessOrEqual(t, stats.RowGroupsScanned, stats.RowGroupsTotal)
}

func Test_Run_CombinedFilter(t *testing.T) {
	parquetReader := setupTestReader(t)

	query := &Query{
		Select: []string{"chunk_id", "chunk_index"},
		Where: &LogicalFilter{
			Operator: LogicalFilterOperatorAnd,
			ChildFilters: []Filter{
				&ComparativeFilter{
					FieldName: "doc_id",
					Operator:  ComparativeOperatorEqualTo,
					Operand:   StringOperand("d3"),
				},
				&ComparativeFilter{
					FieldName: "chunk_index",
					Operator:  ComparativeOperatorGreaterThanOrEqualTo,
					Operand:   Int64Operand(2),
				},
			},
		},
	}

	results, _, runErr := query.Run(parquetReader, testRootSchemaElementName)
	require.NoError(t, runErr)

	expectedResults := []*ResultRow{
		{"d3_c2", int64(2)},
		{"d3_c3", int64(3)},
	}
	assert.Equal(t, expectedResults, results)
}

func Test_Run_ZonemapSkipsImpossibleRange(t *testing.T) {
	parquetReader := setupTestReader(t)

	query := &Query{
		Select: []string{"chunk_id"},
		Where: &ComparativeFilter{
			FieldName: "chunk_index",
			Operator:  ComparativeOperatorGreaterThan,
			Operand:   Int64Operand(1000),
		},
	}

	results, stats, runErr := query.Run(parquetReader, testRootSchemaElementName)
	require.NoError(t, runErr)

	assert.Empty(t, results)
	// no row group can contain chunk_index > 1000, so none are scanned and
	// no column data is read at all
	assert.Equal(t, 0, stats.RowGroupsScanned)
	assert.Equal(t, 0, stats.ColumnsRead)
}

func Test_Run_Limit(t *testing.T) {
	parquetReader := setupTestReader(t)

	query := &Query{
		Select: []string{"doc_id"},
		Limit:  5,
	}

	results, _, runErr := query.Run(parquetReader, testRootSchemaElementName)
	require.NoError(t, runErr)

	require.Len(t, results, 5)
	assert.Equal(t, &ResultRow{"d1"}, results[0])
}

func Test_Run_NoWhereClause(t *testing.T) {
	parquetReader := setupTestReader(t)

	query := &Query{
		Select: []string{"chunk_id", "source"},
	}

	results, stats, runErr := query.Run(parquetReader, testRootSchemaElementName)
	require.NoError(t, runErr)

	assert.Len(t, results, len(pqetestutil.TestChunks))
	assert.Equal(t, stats.RowGroupsTotal, stats.RowGroupsScanned)
	assert.Equal(t, 2, stats.ColumnsRead)
}

func Test_Run_InvalidQuery(t *testing.T) {
	parquetReader := setupTestReader(t)

	_, _, runErr := (&Query{
		Select: []string{"chunk_id"},
		Where:  &ComparativeFilter{FieldName: "source", Operator: ComparativeOperatorEqualTo},
	}).Run(parquetReader, testRootSchemaElementName)
	require.Error(t, runErr)

	_, _, runErr = (&Query{Where: nil}).Run(parquetReader, testRootSchemaElementName)
	require.Error(t, runErr)
}
