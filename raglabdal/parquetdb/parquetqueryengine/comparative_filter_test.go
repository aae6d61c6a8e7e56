package parquetqueryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
)

// row group footers hold the mangled in-schema name ("Source" for a column
// tagged "source"), like the parquet-go writer produces
func byteArrayStatsRowGroup(fieldName, min, max string) *parquet.RowGroup {
	return &parquet.RowGroup{
		Columns: []*parquet.ColumnChunk{
			{
				MetaData: &parquet.ColumnMetaData{
					PathInSchema: []string{common.HeadToUpper(fieldName)},
					Statistics: &parquet.Statistics{
						MinValue: []byte(min),
						MaxValue: []byte(max),
					},
					Type: parquet.Type_BYTE_ARRAY,
				},
			},
		},
	}
}

func TestComparativeFilter_ShouldRowGroupBeScanned(t *testing.T) {
	tests := []struct {
		name     string
		filter   *ComparativeFilter
		rowGroup *parquet.RowGroup
		want     ShouldScanResult
	}{
		{
			name: "equality inside range",
			filter: &ComparativeFilter{
				FieldName: "source",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("squad_v2"),
			},
			rowGroup: byteArrayStatsRowGroup("source", "hotpot", "squad_v2"),
			want:     ShouldScanResultYes,
		},
		{
			name: "equality above range",
			filter: &ComparativeFilter{
				FieldName: "source",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("zzz"),
			},
			rowGroup: byteArrayStatsRowGroup("source", "hotpot", "squad_v2"),
			want:     ShouldScanResultNo,
		},
		{
			name: "equality below range",
			filter: &ComparativeFilter{
				FieldName: "source",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("aaa"),
			},
			rowGroup: byteArrayStatsRowGroup("source", "hotpot", "squad_v2"),
			want:     ShouldScanResultNo,
		},
		{
			name: "greater than below max",
			filter: &ComparativeFilter{
				FieldName: "chunk_index",
				Operator:  ComparativeOperatorGreaterThan,
				Operand:   Int64Operand(10),
			},
			rowGroup: int64StatsRowGroup("chunk_index", 0, 15),
			want:     ShouldScanResultYes,
		},
		{
			name: "greater than above max",
			filter: &ComparativeFilter{
				FieldName: "chunk_index",
				Operator:  ComparativeOperatorGreaterThan,
				Operand:   Int64Operand(15),
			},
			rowGroup: int64StatsRowGroup("chunk_index", 0, 15),
			want:     ShouldScanResultNo,
		},
		{
			name: "column absent in row group",
			filter: &ComparativeFilter{
				FieldName: "missing_column",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("x"),
			},
			rowGroup: int64StatsRowGroup("chunk_index", 0, 15),
			want:     ShouldScanResultNotSure,
		},
		{
			name: "no statistics available",
			filter: &ComparativeFilter{
				FieldName: "source",
				Operator:  ComparativeOperatorEqualTo,
				Operand:   StringOperand("squad_v2"),
			},
			rowGroup: &parquet.RowGroup{
				Columns: []*parquet.ColumnChunk{
					{
						MetaData: &parquet.ColumnMetaData{
							PathInSchema: []string{"Source"},
							Type:         parquet.Type_BYTE_ARRAY,
						},
					},
				},
			},
			want: ShouldScanResultNotSure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.ShouldRowGroupBeScanned(tt.rowGroup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparativeFilter_Validate(t *testing.T) {
	err := (&ComparativeFilter{FieldName: "source", Operator: ComparativeOperatorEqualTo}).Validate()
	require.Error(t, err)

	err = (&ComparativeFilter{FieldName: "source", Operator: "LIKE", Operand: StringOperand("x")}).Validate()
	require.Error(t, err)

	err = (&ComparativeFilter{FieldName: "source", Operator: ComparativeOperatorEqualTo, Operand: StringOperand("x")}).Validate()
	require.NoError(t, err)
}
