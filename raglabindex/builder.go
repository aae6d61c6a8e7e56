package raglabindex

import (
	"context"
	"sync"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jamesrr39/semaphore"
)

type BuildOptions struct {
	// BatchSize is how many chunk texts go into one embedding request.
	BatchSize int
	// MaxConcurrentBatches bounds how many embedding requests run at once.
	MaxConcurrentBatches uint
	// Filter restricts which chunks get indexed. Nil indexes everything.
	Filter *raglabdal.ChunkFilter
	// Model is recorded in the index metadata.
	Model string
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		BatchSize:            64,
		MaxConcurrentBatches: 4,
	}
}

// Build embeds every chunk the filter selects and assembles a flat index
// over them. Embedding batches run concurrently; the resulting index keeps
// the chunks in their original order.
func Build(
	ctx context.Context,
	logger *logpkg.Logger,
	conn raglabdal.DataSourceConn,
	embedder Embedder,
	opts BuildOptions,
) (*FlatIndex, *IndexMeta, errorsx.Error) {
	if opts.BatchSize < 1 {
		return nil, nil, errorsx.Errorf("BatchSize must be more than 0")
	}
	if opts.MaxConcurrentBatches < 1 {
		return nil, nil, errorsx.Errorf("MaxConcurrentBatches must be more than 0")
	}

	refs, err := conn.ChunkRefs(ctx, opts.Filter, 0)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("building index over %d chunks in batches of %d", len(refs), opts.BatchSize)

	type batchType struct {
		startIndex int
		chunks     []*raglab.Chunk
		vectors    [][]float32
		err        errorsx.Error
	}

	var batches []*batchType
	for start := 0; start < len(refs); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(refs) {
			end = len(refs)
		}

		var chunkIDs []string
		for _, ref := range refs[start:end] {
			chunkIDs = append(chunkIDs, ref.ChunkID)
		}

		chunks, err := conn.ChunksByID(ctx, chunkIDs)
		if err != nil {
			return nil, nil, err
		}

		batches = append(batches, &batchType{startIndex: start, chunks: chunks})
	}

	sema := semaphore.NewSemaphore(opts.MaxConcurrentBatches)
	var wg sync.WaitGroup
	for _, batch := range batches {
		wg.Add(1)
		go func(batch *batchType) {
			defer wg.Done()

			sema.Add()
			defer sema.Done()

			var texts []string
			for _, chunk := range batch.chunks {
				texts = append(texts, chunk.Text)
			}

			batch.vectors, batch.err = embedder.EmbedBatch(ctx, texts)
		}(batch)
	}
	wg.Wait()

	index, errx := NewFlatIndex(embedder.Dimensions())
	if errx != nil {
		return nil, nil, errx
	}

	for _, batch := range batches {
		if batch.err != nil {
			return nil, nil, errorsx.Wrap(batch.err, "batchStartIndex", batch.startIndex)
		}

		if len(batch.vectors) != len(batch.chunks) {
			return nil, nil, errorsx.Errorf("batch at %d: expected %d vectors but got %d",
				batch.startIndex, len(batch.chunks), len(batch.vectors))
		}

		for i, chunk := range batch.chunks {
			errx = index.Add(chunk.ChunkID, chunk.DocID, chunk.Title, batch.vectors[i])
			if errx != nil {
				return nil, nil, errx
			}
		}
	}

	meta := &IndexMeta{
		Model:       opts.Model,
		CreatedAtMs: uint64(time.Now().UnixNano() / (1000 * 1000)),
	}

	return index, meta, nil
}
