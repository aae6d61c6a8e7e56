package raglabdal

import (
	"reflect"
	"testing"
)

func TestParseDBConnFilePath(t *testing.T) {
	type args struct {
		str string
	}
	tests := []struct {
		name    string
		args    args
		want    DBFileConnectionURL
		wantErr bool
	}{
		{
			name: "parquet dir",
			args: args{"parquet://data/processed/chunks_short"},
			want: DBFileConnectionURL{
				Type:           DBFileTypeParquet,
				ConnectionPath: "data/processed/chunks_short",
			},
		},
		{
			name: "duckdb dir",
			args: args{"duckdb://data/processed/chunks_short"},
			want: DBFileConnectionURL{
				Type:           DBFileTypeDuckDB,
				ConnectionPath: "data/processed/chunks_short",
			},
		},
		{
			name: "postgres",
			args: args{"postgresql://localhost"},
			want: DBFileConnectionURL{
				Type:           DBFileTypePostgresql,
				ConnectionPath: "localhost",
			},
		},
		{
			name:    "missing separator",
			args:    args{"just/a/path"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDBConnFilePath(tt.args.str)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDBConnFilePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDBConnFilePath() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *ChunkFilter
		want   bool
	}{
		{"nil filter", nil, true},
		{"zero filter", &ChunkFilter{}, true},
		{"source set", &ChunkFilter{Source: "squad_v2"}, false},
		{"doc id set", &ChunkFilter{DocID: "squad_v2_train_0"}, false},
		{"min chunk index set", &ChunkFilter{MinChunkIndex: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
