package parquetdb

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	parquetwriter "github.com/xitongsys/parquet-go/writer"
)

// JSON writer example: https://github.com/xitongsys/parquet-go/blob/62cf52a8dad4f8b729e6c38809f091cd134c3749/example/json_write.go

var (
	//go:embed chunks_schema.json
	chunksSchema string
)

const (
	ChunksFileName      = "chunks.parquet"
	DatasetInfoFileName = "dataset_info.json"

	DefaultParallelism  = 4
	DefaultRowGroupSize = 128 * 1024 * 1024 // 128M
)

var _ raglabdal.FinalStorage = &Importer{}

// Importer writes chunk rows into a parquet file in the given directory. Call
// Commit to finish the file and get a queryable datasource back, or Rollback
// to discard everything written so far.
type Importer struct {
	dirPath                 string
	chunksFilePath          string
	chunksParquetWriterFile *parquetwriter.JSONWriter
	chunksDestinationFile   source.ParquetFile
}

func NewImporter(dirPath string, parallelism, rowGroupSize int64) (*Importer, errorsx.Error) {
	err := os.MkdirAll(dirPath, 0755)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	chunksFilePath := filepath.Join(dirPath, ChunksFileName)

	f, err := local.NewLocalFileWriter(chunksFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	writerFile, err := parquetwriter.NewJSONWriter(chunksSchema, f, parallelism)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	writerFile.RowGroupSize = rowGroupSize
	writerFile.CompressionType = parquet.CompressionCodec_SNAPPY

	return &Importer{
		dirPath:                 dirPath,
		chunksFilePath:          chunksFilePath,
		chunksParquetWriterFile: writerFile,
		chunksDestinationFile:   f,
	}, nil
}

func (i *Importer) ImportChunks(objs []*raglab.Chunk) errorsx.Error {
	for _, obj := range objs {
		j, err := json.Marshal(obj)
		if err != nil {
			return errorsx.Wrap(err)
		}

		err = i.chunksParquetWriterFile.Write(string(j))
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}

func (i *Importer) Commit(info *raglab.DatasetInfo) (raglabdal.DataSourceConn, errorsx.Error) {
	err := i.chunksParquetWriterFile.WriteStop()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = i.chunksDestinationFile.Close()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	datasetInfoPath := filepath.Join(i.dirPath, DatasetInfoFileName)
	err = os.WriteFile(datasetInfoPath, infoJSON, 0644)
	if err != nil {
		return nil, errorsx.Wrap(err, "filepath", datasetInfoPath)
	}

	return NewParquetDatasource(i.dirPath)
}

func (i *Importer) Rollback() errorsx.Error {
	// best effort close; the writer may be mid-file
	i.chunksDestinationFile.Close()

	err := os.Remove(i.chunksFilePath)
	if err != nil && !os.IsNotExist(err) {
		return errorsx.Wrap(err)
	}

	return nil
}
