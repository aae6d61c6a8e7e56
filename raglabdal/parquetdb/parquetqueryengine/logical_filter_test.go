package parquetqueryengine

import (
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/encoding"
	"github.com/xitongsys/parquet-go/parquet"
)

func int64StatsRowGroup(fieldName string, min, max int64) *parquet.RowGroup {
	return &parquet.RowGroup{
		Columns: []*parquet.ColumnChunk{
			{
				MetaData: &parquet.ColumnMetaData{
					PathInSchema: []string{common.HeadToUpper(fieldName)},
					Statistics: &parquet.Statistics{
						MinValue: encoding.WritePlainINT64([]interface{}{min}),
						MaxValue: encoding.WritePlainINT64([]interface{}{max}),
					},
					Type: parquet.Type_INT64,
				},
			},
		},
	}
}

func TestLogicalFilter_ShouldRowGroupBeScanned(t *testing.T) {
	type fields struct {
		Operator     LogicalFilterOperator
		ChildFilters []Filter
	}
	tests := []struct {
		name     string
		fields   fields
		rowGroup *parquet.RowGroup
		want     ShouldScanResult
		want1    errorsx.Error
	}{
		{
			name: "10 < x < 20, row group [5, 15]",
			fields: fields{
				Operator: LogicalFilterOperatorAnd,
				ChildFilters: []Filter{
					&ComparativeFilter{
						FieldName: "chunk_index",
						Operator:  ComparativeOperatorGreaterThan,
						Operand:   Int64Operand(10),
					},
					&ComparativeFilter{
						FieldName: "chunk_index",
						Operator:  ComparativeOperatorLessThan,
						Operand:   Int64Operand(20),
					},
				},
			},
			rowGroup: int64StatsRowGroup("chunk_index", 5, 15),
			want:     ShouldScanResultYes,
		},
		{
			name: "10 < x < 20, row group [30, 40] is ruled out",
			fields: fields{
				Operator: LogicalFilterOperatorAnd,
				ChildFilters: []Filter{
					&ComparativeFilter{
						FieldName: "chunk_index",
						Operator:  ComparativeOperatorGreaterThan,
						Operand:   Int64Operand(10),
					},
					&ComparativeFilter{
						FieldName: "chunk_index",
						Operator:  ComparativeOperatorLessThan,
						Operand:   Int64Operand(20),
					},
				},
			},
			rowGroup: int64StatsRowGroup("chunk_index", 30, 40),
			want:     ShouldScanResultNo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf := &LogicalFilter{
				Operator:     tt.fields.Operator,
				ChildFilters: tt.fields.ChildFilters,
			}
			got, err := lf.ShouldRowGroupBeScanned(tt.rowGroup)
			require.Equal(t, tt.want1, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogicalFilter_MatchesRow(t *testing.T) {
	lf := &LogicalFilter{
		Operator: LogicalFilterOperatorAnd,
		ChildFilters: []Filter{
			&ComparativeFilter{
				FieldName: "source",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("squad_v2"),
			},
			&ComparativeFilter{
				FieldName: "chunk_index",
				Operator:  ComparativeOperatorLessThan,
				Operand:   Int64Operand(3),
			},
		},
	}

	getValue := func(row map[string]Operand) GetRowValueFunc {
		return func(fieldName string) (Operand, errorsx.Error) {
			val, ok := row[fieldName]
			if !ok {
				return nil, errorsx.Errorf("field not found: %q", fieldName)
			}
			return val, nil
		}
	}

	matches, err := lf.MatchesRow(getValue(map[string]Operand{
		"source":      StringOperand("squad_v2"),
		"chunk_index": Int64Operand(1),
	}))
	require.NoError(t, err)
	assert.True(t, matches)

	matches, err = lf.MatchesRow(getValue(map[string]Operand{
		"source":      StringOperand("hotpot"),
		"chunk_index": Int64Operand(1),
	}))
	require.NoError(t, err)
	assert.False(t, matches)

	matches, err = lf.MatchesRow(getValue(map[string]Operand{
		"source":      StringOperand("squad_v2"),
		"chunk_index": Int64Operand(5),
	}))
	require.NoError(t, err)
	assert.False(t, matches)
}
