package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
	"github.com/jamesrr39/raglab/raglabdal/duckdbdb"
	"github.com/jamesrr39/raglab/raglabdal/parquetdb"
	"github.com/jamesrr39/raglab/raglabdal/warehousedb"
	"github.com/jamesrr39/raglab/raglabindex"
	"github.com/jamesrr39/raglab/webservices"
	"github.com/openai/openai-go"
	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	DEFAULT_PORT = 9000
)

var logger *logpkg.Logger

func main() {
	logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelInfo)

	// flag actions run during Parse, before any command action
	kingpin.Flag("v", "verbose logging").Action(func(ctx *kingpin.ParseContext) error {
		logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelDebug)
		return nil
	}).Bool()

	setupIngest()
	setupInspect()
	setupImport()
	setupQuery()
	setupStats()
	setupIndex()
	setupSearch()
	setupUpload()
	setupServe()

	kingpin.Parse()
}

// wrapWithStack makes kingpin print the errorsx stack trace on failure.
func wrapWithStack(run func() errorsx.Error) error {
	err := run()
	if err != nil {
		return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
	}
	return nil
}

var dbFileHelp = fmt.Sprintf("datasource to use. It should be the type, followed by the separator (%s), followed by the path or connection string. For example: %s%smy/dataset/dir",
	raglabdal.ConnectionPathSeparator,
	string(raglabdal.DBFileTypeParquet),
	raglabdal.ConnectionPathSeparator,
)

func loadDBConn(dbConfigString string) (raglabdal.DataSourceConn, errorsx.Error) {
	dbConnConfig, err := raglabdal.ParseDBConnFilePath(dbConfigString)
	if err != nil {
		return nil, errorsx.Wrap(err, "db file path", dbConfigString)
	}

	switch dbConnConfig.Type {
	case raglabdal.DBFileTypeParquet:
		return parquetdb.NewParquetDatasource(dbConnConfig.ConnectionPath)
	case raglabdal.DBFileTypeDuckDB:
		return duckdbdb.NewDuckDBDataSourceConn(gofs.NewOsFs(), dbConnConfig.ConnectionPath)
	case raglabdal.DBFileTypePostgresql:
		return warehousedb.NewDBConn(dbConnConfig.ConnectionPath)
	default:
		return nil, errorsx.Errorf("unrecognized db connection type: %q", dbConnConfig.Type)
	}
}

func openDocsReader(fs gofs.Fs, filePath string) (*raglabdal.DefaultDocsReader, gofs.File, errorsx.Error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, nil, errorsx.Wrap(err, "filePath", filePath)
	}

	docsReader, errx := raglabdal.NewDefaultDocsReader(file)
	if errx != nil {
		file.Close()
		return nil, nil, errx
	}

	return docsReader, file, nil
}

func buildEmbedder(embedderName string, dimensions int) (raglabindex.Embedder, string, errorsx.Error) {
	switch embedderName {
	case "local":
		embedder := raglabindex.NewLocalEmbedder(dimensions)
		return embedder, "local", nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", errorsx.Errorf("OPENAI_API_KEY must be set to use the openai embedder")
		}

		embedder := raglabindex.NewOpenAIEmbedder(apiKey, raglabindex.DefaultOpenAIEmbeddingModel, dimensions)
		return embedder, string(raglabindex.DefaultOpenAIEmbeddingModel), nil
	default:
		return nil, "", errorsx.Errorf("unrecognized embedder: %q (want local or openai)", embedderName)
	}
}

func embedderForModel(model string, dimensions int) (raglabindex.Embedder, errorsx.Error) {
	if model == "local" || model == "" {
		return raglabindex.NewLocalEmbedder(dimensions), nil
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errorsx.Errorf("OPENAI_API_KEY must be set to use model %q", model)
	}

	return raglabindex.NewOpenAIEmbedder(apiKey, openai.EmbeddingModel(model), dimensions), nil
}

func setupIngest() {
	cmd := kingpin.Command("ingest", "normalize a raw QA JSONL file into a docs JSONL file")
	rawFilePath := cmd.Arg("raw-file", "raw QA JSONL file").Required().String()
	outFilePath := cmd.Arg("out-file", "normalized docs JSONL file to write").Required().String()
	source := cmd.Flag("source", "source label for produced documents").Default("squad_v2").String()
	split := cmd.Flag("split", "dataset split, baked into doc IDs").Default("train").String()
	maxDocs := cmd.Flag("max-docs", "stop after this many documents (0 = no limit)").Default("0").Int64()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			fs := gofs.NewOsFs()

			docsReader, file, errx := openDocsReader(fs, *rawFilePath)
			if errx != nil {
				return errx
			}
			defer file.Close()

			outFile, err := os.Create(*outFilePath)
			if err != nil {
				return errorsx.Wrap(err, "filePath", *outFilePath)
			}
			defer outFile.Close()

			summary, errx := raglabdal.IngestQA(docsReader, outFile, raglabdal.IngestOptions{
				Source:  *source,
				Split:   *split,
				MaxDocs: *maxDocs,
			})
			if errx != nil {
				return errx
			}

			fmt.Printf("Wrote %d docs -> %s\n", summary.DocCount, *outFilePath)
			fmt.Printf("Chars: avg=%.1f, min=%d, max=%d\n",
				summary.TextStats.AvgChars(), summary.TextStats.MinChars, summary.TextStats.MaxChars)

			return nil
		})
	})
}

func setupInspect() {
	cmd := kingpin.Command("inspect", "sanity-check a docs JSONL file")
	filePath := cmd.Arg("file", "JSONL file to inspect").Required().String()
	previews := cmd.Flag("previews", "number of records to preview").Default(fmt.Sprintf("%d", raglabdal.DefaultInspectPreviewN)).Int()
	sample := cmd.Flag("sample", "number of leading records to sample for keys and text stats").Default(fmt.Sprintf("%d", raglabdal.DefaultInspectSampleForKeys)).Int()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			fs := gofs.NewOsFs()

			docsReader, file, errx := openDocsReader(fs, *filePath)
			if errx != nil {
				return errx
			}
			defer file.Close()

			inspection, errx := raglabdal.InspectJSONL(docsReader, raglabdal.InspectOptions{
				PreviewN:      *previews,
				SampleForKeys: *sample,
			})
			if errx != nil {
				return errx
			}

			fmt.Print(inspection.FormatReport())

			return nil
		})
	})
}

func setupImport() {
	cmd := kingpin.Command("import", "import a docs JSONL file into a chunk dataset")
	dbFileConnString := cmd.Arg("db-file", dbFileHelp).Required().String()
	filePath := cmd.Arg("file", "docs JSONL file to import").Required().String()
	chunkSize := cmd.Flag("chunk-size", "chunk window size in characters").Default(fmt.Sprintf("%d", raglab.DefaultChunkSize)).Int()
	chunkOverlap := cmd.Flag("chunk-overlap", "characters shared between consecutive chunks").Default(fmt.Sprintf("%d", raglab.DefaultChunkOverlap)).Int()
	parquetRowGroupSize := cmd.Flag("parquet-row-group-size", `amount of bytes in one parquet row group`).Default(fmt.Sprintf("%d", parquetdb.DefaultRowGroupSize)).Int64()
	shouldProfile := cmd.Flag("profile", "profile the import performance").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			if *shouldProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			fs := gofs.NewOsFs()

			startTime := time.Now()

			docsReader, file, errx := openDocsReader(fs, *filePath)
			if errx != nil {
				return errx
			}
			defer file.Close()

			dbConnConfig, errx := raglabdal.ParseDBConnFilePath(*dbFileConnString)
			if errx != nil {
				return errorsx.Wrap(errx, "db file path", *dbFileConnString)
			}

			var finalStorage raglabdal.FinalStorage
			switch dbConnConfig.Type {
			case raglabdal.DBFileTypeParquet:
				finalStorage, errx = parquetdb.NewImporter(dbConnConfig.ConnectionPath, parquetdb.DefaultParallelism, *parquetRowGroupSize)
				if errx != nil {
					return errx
				}
			case raglabdal.DBFileTypePostgresql:
				finalStorage, errx = warehousedb.NewFinalStorage(dbConnConfig.ConnectionPath)
				if errx != nil {
					return errx
				}
			default:
				return errorsx.Errorf("can't import into DB file type %q", dbConnConfig.Type)
			}

			finishedChan := make(chan bool)
			go runLogProgress(docsReader, finishedChan)

			opts := raglabdal.DefaultImportOpts()
			opts.ChunkOptions = raglab.ChunkOptions{Size: *chunkSize, Overlap: *chunkOverlap}

			_, summary, errx := raglabdal.Import(logger, docsReader, finalStorage, opts)
			if errx != nil {
				return errx
			}

			finishedChan <- true

			logger.Info("import finished in %s: %d docs, %d chunks", time.Since(startTime), summary.DocCount, summary.ChunkCount)

			return nil
		})
	})
}

func setupQuery() {
	cmd := kingpin.Command("query", "run the pushdown demo query suite against a datasource")
	dbFileConnString := cmd.Arg("db-file", dbFileHelp).Required().String()
	source := cmd.Flag("source", "source label for the filtered count query").Default("squad_v2").String()
	limit := cmd.Flag("limit", "row limit for the projection query").Default("5").Int64()
	topN := cmd.Flag("top-n", "number of docs for the group-by query").Default("5").Int()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			conn, err := loadDBConn(*dbFileConnString)
			if err != nil {
				return err
			}

			runCtx := context.Background()

			fmt.Printf("-- projection-only: SELECT chunk_id, doc_id LIMIT %d\n", *limit)
			refs, err := conn.ChunkRefs(runCtx, nil, *limit)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				fmt.Printf("%s\t%s\n", ref.ChunkID, ref.DocID)
			}

			fmt.Printf("\n-- filtered count: WHERE source = %q\n", *source)
			count, err := conn.CountChunks(runCtx, &raglabdal.ChunkFilter{Source: *source})
			if err != nil {
				return err
			}
			fmt.Printf("%d chunks\n", count)

			fmt.Printf("\n-- top %d docs by chunk count\n", *topN)
			docCounts, err := conn.TopDocsByChunkCount(runCtx, *topN)
			if err != nil {
				return err
			}
			for _, docCount := range docCounts {
				fmt.Printf("%s\t%d\n", docCount.DocID, docCount.NumChunks)
			}

			return nil
		})
	})
}

func setupStats() {
	cmd := kingpin.Command("stats", "show statistics for a datasource")
	dbFileConnString := cmd.Arg("db-file", dbFileHelp).Required().String()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			conn, err := loadDBConn(*dbFileConnString)
			if err != nil {
				return err
			}

			runCtx := context.Background()

			info, err := conn.DatasetInfo()
			if err != nil {
				return err
			}
			fmt.Printf("dataset: %s (%d docs, %d chunks, chunk size %d / overlap %d)\n",
				info.SourceDataset, info.DocCount, info.ChunkCount, info.ChunkSize, info.ChunkOverlap)

			stats, err := conn.TextLengthStats(runCtx, nil)
			if err != nil {
				return err
			}
			fmt.Printf("chunk text chars: count=%d avg=%.1f min=%d max=%d\n",
				stats.Count, stats.AvgChars(), stats.MinChars, stats.MaxChars)

			sourceCounts, err := conn.SourceDistribution(runCtx)
			if err != nil {
				return err
			}
			for _, sourceCount := range sourceCounts {
				fmt.Printf("source %s: %d chunks\n", sourceCount.Source, sourceCount.NumChunks)
			}

			return nil
		})
	})
}

func setupIndex() {
	cmd := kingpin.Command("index", "build a vector index over a datasource's chunks")
	dbFileConnString := cmd.Arg("db-file", dbFileHelp).Required().String()
	indexDirPath := cmd.Arg("index-dir", "directory to write the index into").Required().String()
	embedderName := cmd.Flag("embedder", "embedder to use: local or openai").Default("local").String()
	dimensions := cmd.Flag("dimensions", "vector dimensions (0 = embedder default)").Default("0").Int()
	batchSize := cmd.Flag("batch-size", "chunk texts per embedding request").Default("64").Int()
	maxConcurrentBatches := cmd.Flag("max-concurrent-batches", "embedding requests running at once").Default("4").Uint()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			conn, err := loadDBConn(*dbFileConnString)
			if err != nil {
				return err
			}

			embedder, model, err := buildEmbedder(*embedderName, *dimensions)
			if err != nil {
				return err
			}

			startTime := time.Now()

			index, meta, err := raglabindex.Build(context.Background(), logger, conn, embedder, raglabindex.BuildOptions{
				BatchSize:            *batchSize,
				MaxConcurrentBatches: *maxConcurrentBatches,
				Model:                model,
			})
			if err != nil {
				return err
			}

			err2 := os.MkdirAll(*indexDirPath, 0755)
			if err2 != nil {
				return errorsx.Wrap(err2)
			}

			err = index.Save(
				filepath.Join(*indexDirPath, raglabindex.IndexFileName),
				filepath.Join(*indexDirPath, raglabindex.IndexMetaFileName),
				meta,
			)
			if err != nil {
				return err
			}

			logger.Info("indexed %d chunks (%d dimensions, model %s) in %s", index.Len(), index.Dimensions(), model, time.Since(startTime))

			return nil
		})
	})
}

func setupSearch() {
	cmd := kingpin.Command("search", "retrieve chunks for a text query")
	dbFileConnString := cmd.Arg("db-file", dbFileHelp).Required().String()
	indexDirPath := cmd.Arg("index-dir", "directory containing the index").Required().String()
	query := cmd.Arg("query", "text query").Required().String()
	k := cmd.Flag("k", "number of results").Default("5").Int()
	dedupeField := cmd.Flag("dedupe-by", "keep one chunk per value of this field (doc_id or title)").
		Default(string(raglabindex.DedupeFieldDocID)).String()
	noDedupe := cmd.Flag("no-dedupe", "allow several chunks of the same document in the results").Bool()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			conn, err := loadDBConn(*dbFileConnString)
			if err != nil {
				return err
			}

			retriever, err := loadRetriever(*indexDirPath, conn)
			if err != nil {
				return err
			}

			opts := raglabindex.DefaultRetrieveOptions()
			opts.DedupeField = raglabindex.DedupeField(*dedupeField)
			if *noDedupe {
				opts.DedupeField = raglabindex.DedupeFieldNone
			}
			err = opts.DedupeField.Validate()
			if err != nil {
				return err
			}

			retrieved, err := retriever.Retrieve(context.Background(), *query, *k, opts)
			if err != nil {
				return err
			}

			if len(retrieved) < *k {
				fmt.Printf("note: only %d results available\n", len(retrieved))
			}

			for i, item := range retrieved {
				fmt.Printf("%d. [%.4f] %s (%s)\n   %s\n",
					i+1, item.Score, item.Chunk.ChunkID, item.Chunk.Title,
					raglab.SafePreview(item.Chunk.Text, 120))
			}

			return nil
		})
	})
}

func setupUpload() {
	cmd := kingpin.Command("upload", "upload a docs JSONL file into the Postgres warehouse")
	connStr := cmd.Arg("connection-string", "postgres connection string (without the postgresql:// prefix)").Required().String()
	filePath := cmd.Arg("file", "docs JSONL file to upload").Required().String()
	dryRun := cmd.Flag("dry-run", "check connectivity and exit without uploading").Bool()
	chunkSize := cmd.Flag("chunk-size", "chunk window size in characters").Default(fmt.Sprintf("%d", raglab.DefaultChunkSize)).Int()
	chunkOverlap := cmd.Flag("chunk-overlap", "characters shared between consecutive chunks").Default(fmt.Sprintf("%d", raglab.DefaultChunkOverlap)).Int()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			if *dryRun {
				err := warehousedb.Ping(*connStr)
				if err != nil {
					return err
				}
				fmt.Println("warehouse connection OK")
				return nil
			}

			fs := gofs.NewOsFs()

			docsReader, file, errx := openDocsReader(fs, *filePath)
			if errx != nil {
				return errx
			}
			defer file.Close()

			finalStorage, errx := warehousedb.NewFinalStorage(*connStr)
			if errx != nil {
				return errx
			}

			finishedChan := make(chan bool)
			go runLogProgress(docsReader, finishedChan)

			opts := raglabdal.DefaultImportOpts()
			opts.ChunkOptions = raglab.ChunkOptions{Size: *chunkSize, Overlap: *chunkOverlap}
			opts.BatchSize = warehousedb.UploadBatchSize

			_, summary, errx := raglabdal.Import(logger, docsReader, finalStorage, opts)
			if errx != nil {
				return errx
			}

			finishedChan <- true

			fmt.Printf("uploaded %d docs (%d chunks) to the warehouse\n", summary.DocCount, summary.ChunkCount)

			return nil
		})
	})
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve the HTTP API over loaded datasources")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	dbFileConnStrings := cmd.Arg("db-file", dbFileHelp+" (repeatable)").Strings()
	indexDirPath := cmd.Flag("index-dir", "directory containing a built index, enables the search endpoint").String()
	cmd.Action(func(ctx *kingpin.ParseContext) error {
		return wrapWithStack(func() errorsx.Error {
			pathsConfig, err := ensureDefaultPathsConfig()
			if err != nil {
				return err
			}

			dbConnSet, err := loadDBConnSet(pathsConfig, *dbFileConnStrings)
			if err != nil {
				return err
			}

			var retriever *raglabindex.Retriever
			if *indexDirPath != "" {
				conns := dbConnSet.GetConns()
				if len(conns) == 0 {
					return errorsx.Errorf("an index was supplied but no datasource is loaded to hydrate results from")
				}

				retriever, err = loadRetriever(*indexDirPath, conns[0])
				if err != nil {
					return err
				}
			}

			router, err := createServer(dbConnSet, pathsConfig, retriever)
			if err != nil {
				return err
			}

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			err2 := server.ListenAndServe()
			if err2 != nil {
				return errorsx.Wrap(err2)
			}

			return nil
		})
	})
}

func ensureDefaultPathsConfig() (*raglabdal.PathsConfig, errorsx.Error) {
	rootDir, err := userextra.ExpandUser("~/.local/share/github.com/jamesrr39/raglab/")
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	pathsConfig := &raglabdal.PathsConfig{
		DataDir:         filepath.Join(rootDir, "data_files"),
		RawDataFilesDir: filepath.Join(rootDir, "raw_data_files"),
		IndexDir:        filepath.Join(rootDir, "indexes"),
		TempDir:         filepath.Join(rootDir, "tmp"),
		TraceDir:        filepath.Join(rootDir, "trace"),
	}

	errx := pathsConfig.EnsurePaths()
	if errx != nil {
		return nil, errx
	}

	return pathsConfig, nil
}

// loadDBConnSet opens the datasources named on the command line, plus every
// dataset directory already present in the data dir.
func loadDBConnSet(pathsConfig *raglabdal.PathsConfig, dbFileConnStrings []string) (*raglabdal.DBConnSet, errorsx.Error) {
	var conns []raglabdal.DataSourceConn

	for _, connString := range dbFileConnStrings {
		conn, err := loadDBConn(connString)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	dirItems, err := os.ReadDir(pathsConfig.DataDir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	for _, dirItem := range dirItems {
		dirPath := filepath.Join(pathsConfig.DataDir, dirItem.Name())

		_, err := os.Stat(filepath.Join(dirPath, parquetdb.DatasetInfoFileName))
		if err != nil {
			continue
		}

		conn, errx := parquetdb.NewParquetDatasource(dirPath)
		if errx != nil {
			logger.Error("failed to load %q as a parquet dataset. Error: %q\nStack: %s", dirPath, errx.Error(), errx.Stack())
			continue
		}

		conns = append(conns, conn)
	}

	return raglabdal.NewDBConnSet(conns), nil
}

func loadRetriever(indexDirPath string, conn raglabdal.DataSourceConn) (*raglabindex.Retriever, errorsx.Error) {
	index, meta, err := raglabindex.Load(
		filepath.Join(indexDirPath, raglabindex.IndexFileName),
		filepath.Join(indexDirPath, raglabindex.IndexMetaFileName),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embedderForModel(meta.Model, meta.Dimensions)
	if err != nil {
		return nil, err
	}

	return raglabindex.NewRetriever(index, embedder, conn), nil
}

func isLocalhost(addr string) bool {
	host := addr
	idx := strings.LastIndex(addr, ":")
	if idx >= 0 {
		host = strings.Trim(addr[:idx], "[]")
	}
	return host == "::1" || host == "127.0.0.1"
}

func createLocalhostMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !isLocalhost(r.RemoteAddr) {
				http.Error(w, "connections only allowed from the same computer the server is running on", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

const (
	adminPath = "admin"
)

func createServer(dbConnSet *raglabdal.DBConnSet, pathsConfig *raglabdal.PathsConfig, retriever *raglabindex.Retriever) (chi.Router, errorsx.Error) {
	adminService, err := webservices.NewAdminService(logger, pathsConfig, dbConnSet, raglabdal.NewImportQueue(pathsConfig), adminPath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	traceFilePath := filepath.Join(pathsConfig.TraceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err2 := os.Create(traceFilePath)
	if err2 != nil {
		return nil, errorsx.Wrap(err2)
	}

	tracer := tracing.NewTracer(traceFile)

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", webservices.NewInfoService(logger, dbConnSet))
		r.Mount("/stats/", webservices.NewStatsService(logger, dbConnSet))
		r.Mount("/search/", webservices.NewSearchService(logger, retriever))
	})
	router.Route(fmt.Sprintf("/%s/", adminPath), func(r chi.Router) {
		r.Use(createLocalhostMiddleware())
		r.Mount("/", adminService)
	})

	return router, nil
}

func runLogProgress(docsReader raglabdal.DocsReader, finishedChan chan bool) {
	totalBytes := docsReader.TotalSize()
	for {
		time.Sleep(time.Second * 5)
		select {
		case <-finishedChan:
			log.Println("finished scanning the docs file. Now committing to storage.")
			return
		default:
			fullyScannedBytes := docsReader.FullyScannedBytes()
			log.Printf("scanned bytes so far: %d/%d (%0.02f%%)\n", fullyScannedBytes, totalBytes, float64(fullyScannedBytes)*100/float64(totalBytes))
		}
	}
}
