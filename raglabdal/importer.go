package raglabdal

import (
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglab"
)

type ImportOpts struct {
	ChunkOptions raglab.ChunkOptions
	// BatchSize is how many chunks are handed to the final storage per call.
	BatchSize int
}

func DefaultImportOpts() ImportOpts {
	return ImportOpts{
		ChunkOptions: raglab.DefaultChunkOptions(),
		BatchSize:    1024 * 8,
	}
}

// FinalStorage is somewhere chunk rows can be committed to, e.g. a Parquet
// dataset directory.
type FinalStorage interface {
	ImportChunks(objs []*raglab.Chunk) errorsx.Error
	Commit(info *raglab.DatasetInfo) (DataSourceConn, errorsx.Error)
	Rollback() errorsx.Error
}

// DocumentStorage is implemented by final storages that also keep the
// original documents, e.g. the SQL warehouse.
type DocumentStorage interface {
	ImportDocuments(objs []*raglab.Document) errorsx.Error
}

type ImportSummary struct {
	DocCount   int64
	ChunkCount int64
	TextStats  *raglab.TextLengthStats
	Sources    map[string]int64
}

// Import streams documents from docsReader, chunks them and writes the chunk
// rows to finalStorage in batches. On any failure the storage is rolled back.
func Import(
	logger *logpkg.Logger,
	docsReader DocsReader,
	finalStorage FinalStorage,
	opts ImportOpts,
) (DataSourceConn, *ImportSummary, errorsx.Error) {
	var successful bool

	defer func() {
		if !successful {
			err := finalStorage.Rollback()
			if err != nil {
				logger.Error("couldn't rollback. Error: %s\nStack trace:\n%s\n", err.Error(), err.Stack())
			}
		}
	}()

	err := opts.ChunkOptions.Validate()
	if err != nil {
		return nil, nil, err
	}

	if opts.BatchSize < 1 {
		return nil, nil, errorsx.Errorf("BatchSize must be more than 0")
	}

	summary := &ImportSummary{
		TextStats: new(raglab.TextLengthStats),
		Sources:   make(map[string]int64),
	}

	documentStorage, wantDocuments := finalStorage.(DocumentStorage)

	var batch []*raglab.Chunk
	var docBatch []*raglab.Document
	for docsReader.Scan() {
		doc, err := docsReader.Document()
		if err != nil {
			return nil, nil, err
		}

		chunks, err := raglab.ChunkDocument(doc, opts.ChunkOptions)
		if err != nil {
			return nil, nil, errorsx.Wrap(err, "docID", doc.DocID)
		}

		summary.DocCount++
		summary.ChunkCount += int64(len(chunks))
		summary.TextStats.Add(len(doc.Text))
		summary.Sources[doc.Source] += int64(len(chunks))

		if wantDocuments {
			docBatch = append(docBatch, doc)
			if len(docBatch) >= opts.BatchSize {
				err = documentStorage.ImportDocuments(docBatch)
				if err != nil {
					return nil, nil, errorsx.Wrap(err)
				}
				docBatch = nil
			}
		}

		batch = append(batch, chunks...)
		if len(batch) >= opts.BatchSize {
			err = finalStorage.ImportChunks(batch)
			if err != nil {
				return nil, nil, errorsx.Wrap(err)
			}
			batch = nil
		}
	}

	if docsReader.Err() != nil {
		return nil, nil, errorsx.Wrap(docsReader.Err())
	}

	if len(docBatch) != 0 {
		err = documentStorage.ImportDocuments(docBatch)
		if err != nil {
			return nil, nil, errorsx.Wrap(err)
		}
	}

	if len(batch) != 0 {
		err = finalStorage.ImportChunks(batch)
		if err != nil {
			return nil, nil, errorsx.Wrap(err)
		}
	}

	logger.Info("import scan finished: %d docs, %d chunks. Committing to storage.", summary.DocCount, summary.ChunkCount)

	sourceDataset := ""
	for source := range summary.Sources {
		if sourceDataset == "" || source < sourceDataset {
			// deterministic pick when a corpus mixes sources
			sourceDataset = source
		}
	}

	dataSourceConn, err := finalStorage.Commit(&raglab.DatasetInfo{
		SourceDataset: sourceDataset,
		DocCount:      summary.DocCount,
		ChunkCount:    summary.ChunkCount,
		ChunkSize:     opts.ChunkOptions.Size,
		ChunkOverlap:  opts.ChunkOptions.Overlap,
		CreatedAtMs:   uint64(time.Now().UnixNano() / (1000 * 1000)),
	})
	if err != nil {
		return nil, nil, errorsx.Wrap(err)
	}

	successful = true

	return dataSourceConn, summary, nil
}
