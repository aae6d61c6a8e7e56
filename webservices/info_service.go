package webservices

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/raglab/raglab"
	"github.com/jamesrr39/raglab/raglabdal"
)

func NewInfoService(logger *logpkg.Logger, dbConnSet *raglabdal.DBConnSet) *InfoService {
	ws := &InfoService{logger, dbConnSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger    *logpkg.Logger
	dbConnSet *raglabdal.DBConnSet
	chi.Router
}

type datasetEntryType struct {
	Name string              `json:"name"`
	Info *raglab.DatasetInfo `json:"info"`
}

type datasetsType struct {
	Datasets []*datasetEntryType `json:"datasets"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	entries := []*datasetEntryType{}

	for _, conn := range ws.dbConnSet.GetConns() {
		info, err := conn.DatasetInfo()
		if err != nil {
			errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
			return
		}

		entries = append(entries, &datasetEntryType{
			Name: conn.Name(),
			Info: info,
		})
	}

	// make deterministic
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Name < entries[b].Name
	})

	render.JSON(w, r, datasetsType{entries})
}
