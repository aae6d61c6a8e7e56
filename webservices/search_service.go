package webservices

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglabindex"
	"github.com/jamesrr39/semaphore"
)

const defaultSearchK = 5

// SearchService serves retrieval queries against a loaded vector index.
type SearchService struct {
	logger    *logpkg.Logger
	retriever *raglabindex.Retriever
	sema      *semaphore.Semaphore
	chi.Router
}

func NewSearchService(logger *logpkg.Logger, retriever *raglabindex.Retriever) *SearchService {
	ws := &SearchService{logger, retriever, semaphore.NewSemaphore(4), chi.NewRouter()}

	ws.Get("/", ws.handleSearch)

	return ws
}

func (ws *SearchService) handleSearch(w http.ResponseWriter, r *http.Request) {
	if ws.retriever == nil {
		errorsx.HTTPError(w, ws.logger, errorsx.Errorf("no index loaded"), http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		errorsx.HTTPError(w, ws.logger, errorsx.Errorf("missing query parameter q"), http.StatusBadRequest)
		return
	}

	k := defaultSearchK
	kStr := r.URL.Query().Get("k")
	if kStr != "" {
		var err error
		k, err = strconv.Atoi(kStr)
		if err != nil || k < 1 {
			errorsx.HTTPError(w, ws.logger, errorsx.Errorf("bad value for k: %q", kStr), http.StatusBadRequest)
			return
		}
	}

	opts := raglabindex.DefaultRetrieveOptions()
	dedupeField, hasDedupeField := r.URL.Query()["dedupe"]
	if hasDedupeField {
		opts.DedupeField = raglabindex.DedupeField(dedupeField[0])
		err := opts.DedupeField.Validate()
		if err != nil {
			errorsx.HTTPError(w, ws.logger, err, http.StatusBadRequest)
			return
		}
	}

	ws.sema.Add()
	defer ws.sema.Done()

	retrieved, err := ws.retriever.Retrieve(r.Context(), query, k, opts)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	type hitType struct {
		ChunkID string  `json:"chunkId"`
		DocID   string  `json:"docId"`
		Title   string  `json:"title"`
		Text    string  `json:"text"`
		Source  string  `json:"source"`
		Score   float32 `json:"score"`
	}

	hits := []*hitType{}
	for _, item := range retrieved {
		hits = append(hits, &hitType{
			ChunkID: item.Chunk.ChunkID,
			DocID:   item.Chunk.DocID,
			Title:   item.Chunk.Title,
			Text:    item.Chunk.Text,
			Source:  item.Chunk.Source,
			Score:   item.Score,
		})
	}

	render.JSON(w, r, map[string]interface{}{
		"query": query,
		"hits":  hits,
	})
}
