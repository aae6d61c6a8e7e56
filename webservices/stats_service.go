package webservices

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglabdal"
)

const defaultTopDocsN = 10

// StatsService exposes the analytic operations of each loaded datasource.
// The datasource is addressed by its connection name in the URL.
type StatsService struct {
	logger    *logpkg.Logger
	dbConnSet *raglabdal.DBConnSet
	chi.Router
}

func NewStatsService(logger *logpkg.Logger, dbConnSet *raglabdal.DBConnSet) *StatsService {
	ws := &StatsService{logger, dbConnSet, chi.NewRouter()}

	ws.Get("/{dbName}/count", ws.handleGetCount)
	ws.Get("/{dbName}/sources", ws.handleGetSources)
	ws.Get("/{dbName}/textLengths", ws.handleGetTextLengths)
	ws.Get("/{dbName}/topDocs", ws.handleGetTopDocs)
	ws.Get("/{dbName}/chunks", ws.handleGetChunkRefs)

	return ws
}

func (ws *StatsService) getConn(w http.ResponseWriter, r *http.Request) raglabdal.DataSourceConn {
	dbName := chi.URLParam(r, "dbName")

	conn := ws.dbConnSet.GetConnByName(dbName)
	if conn == nil {
		errorsx.HTTPError(w, ws.logger, errorsx.Errorf("couldn't find db %q", dbName), http.StatusNotFound)
		return nil
	}

	return conn
}

func chunkFilterFromQuery(r *http.Request) (*raglabdal.ChunkFilter, errorsx.Error) {
	filter := &raglabdal.ChunkFilter{
		Source: r.URL.Query().Get("source"),
		DocID:  r.URL.Query().Get("docId"),
	}

	minChunkIndexStr := r.URL.Query().Get("minChunkIndex")
	if minChunkIndexStr != "" {
		minChunkIndex, err := strconv.ParseInt(minChunkIndexStr, 10, 64)
		if err != nil {
			return nil, errorsx.Wrap(err, "minChunkIndex", minChunkIndexStr)
		}
		filter.MinChunkIndex = minChunkIndex
	}

	if filter.IsEmpty() {
		return nil, nil
	}

	return filter, nil
}

func (ws *StatsService) handleGetCount(w http.ResponseWriter, r *http.Request) {
	conn := ws.getConn(w, r)
	if conn == nil {
		return
	}

	filter, err := chunkFilterFromQuery(r)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusBadRequest)
		return
	}

	count, err := conn.CountChunks(r.Context(), filter)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, map[string]int64{"count": count})
}

func (ws *StatsService) handleGetSources(w http.ResponseWriter, r *http.Request) {
	conn := ws.getConn(w, r)
	if conn == nil {
		return
	}

	sourceCounts, err := conn.SourceDistribution(r.Context())
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, sourceCounts)
}

func (ws *StatsService) handleGetTextLengths(w http.ResponseWriter, r *http.Request) {
	conn := ws.getConn(w, r)
	if conn == nil {
		return
	}

	filter, err := chunkFilterFromQuery(r)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusBadRequest)
		return
	}

	stats, err := conn.TextLengthStats(r.Context(), filter)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, stats)
}

func (ws *StatsService) handleGetTopDocs(w http.ResponseWriter, r *http.Request) {
	conn := ws.getConn(w, r)
	if conn == nil {
		return
	}

	n := defaultTopDocsN
	nStr := r.URL.Query().Get("n")
	if nStr != "" {
		var err error
		n, err = strconv.Atoi(nStr)
		if err != nil || n < 1 {
			errorsx.HTTPError(w, ws.logger, errorsx.Errorf("bad value for n: %q", nStr), http.StatusBadRequest)
			return
		}
	}

	docCounts, err := conn.TopDocsByChunkCount(r.Context(), n)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, docCounts)
}

func (ws *StatsService) handleGetChunkRefs(w http.ResponseWriter, r *http.Request) {
	conn := ws.getConn(w, r)
	if conn == nil {
		return
	}

	filter, err := chunkFilterFromQuery(r)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusBadRequest)
		return
	}

	var limit int64
	limitStr := r.URL.Query().Get("limit")
	if limitStr != "" {
		var parseErr error
		limit, parseErr = strconv.ParseInt(limitStr, 10, 64)
		if parseErr != nil || limit < 0 {
			errorsx.HTTPError(w, ws.logger, errorsx.Errorf("bad value for limit: %q", limitStr), http.StatusBadRequest)
			return
		}
	}

	refs, err := conn.ChunkRefs(r.Context(), filter, limit)
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, refs)
}
