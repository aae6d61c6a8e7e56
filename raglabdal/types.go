package raglabdal

import (
	"errors"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

var (
	ErrNoDataAvailable = errors.New("no data available")
)

// ChunkFilter restricts which chunk rows an analytic operation sees. The
// zero value matches every chunk.
type ChunkFilter struct {
	// Source, if set, keeps only chunks with this exact source label.
	Source string
	// DocID, if set, keeps only chunks belonging to this document.
	DocID string
	// MinChunkIndex, if set (> 0), keeps only chunks with ChunkIndex >= this value.
	MinChunkIndex int64
}

func (f *ChunkFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Source == "" && f.DocID == "" && f.MinChunkIndex == 0
}

type DBFileType string

const (
	DBFileTypeParquet    DBFileType = "parquet"
	DBFileTypeDuckDB     DBFileType = "duckdb"
	DBFileTypePostgresql DBFileType = "postgresql"
)

type DBFileConnectionURL struct {
	Type           DBFileType
	ConnectionPath string
}

const ConnectionPathSeparator = "://"

func ParseDBConnFilePath(str string) (DBFileConnectionURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return DBFileConnectionURL{}, errorsx.Errorf("couldn't find connection path separator %q in DB file path", ConnectionPathSeparator)
	}

	return DBFileConnectionURL{
		Type:           DBFileType(str[:idx]),
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}, nil
}
