package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fknsrs.biz/p/viddown/internal/ctxlibrary"
	"fknsrs.biz/p/viddown/internal/httputil"
	"fknsrs.biz/p/viddown/internal/library"
	"fknsrs.biz/p/viddown/models"
)

const defaultRecentCount = 5

type DownloadsResponse struct {
	Total     int                     `json:"total"`
	Downloads []models.DownloadRecord `json:"downloads"`
}

func Downloads(rw http.ResponseWriter, r *http.Request) {
	sort, err := library.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.BadRequest(rw, r, "sort must be one of date, name, or size")
		return
	}

	s := ctxlibrary.GetStore(r.Context())

	httputil.WriteJSON(rw, r, http.StatusOK, DownloadsResponse{
		Total: s.Len(),
		Downloads: s.List(library.ListOptions{
			Query: r.URL.Query().Get("q"),
			Sort:  sort,
		}),
	})
}

func RecentDownloads(rw http.ResponseWriter, r *http.Request) {
	n := defaultRecentCount

	if v := r.URL.Query().Get("n"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			httputil.BadRequest(rw, r, "n must be a non-negative number")
			return
		}

		n = i
	}

	s := ctxlibrary.GetStore(r.Context())

	httputil.WriteJSON(rw, r, http.StatusOK, DownloadsResponse{
		Total:     s.Len(),
		Downloads: s.Recent(n),
	})
}

func Download(rw http.ResponseWriter, r *http.Request) {
	rec, ok := ctxlibrary.GetStore(r.Context()).Get(models.RecordID(mux.Vars(r)["id"]))
	if !ok {
		httputil.NotFound(rw, r)
		return
	}

	httputil.WriteJSON(rw, r, http.StatusOK, rec)
}

type ShareResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func ShareDownload(rw http.ResponseWriter, r *http.Request) {
	rec, ok := ctxlibrary.GetStore(r.Context()).Get(models.RecordID(mux.Vars(r)["id"]))
	if !ok {
		httputil.NotFound(rw, r)
		return
	}

	httputil.WriteJSON(rw, r, http.StatusOK, ShareResponse{
		Title: rec.Title,
		Text:  rec.Title + " - Downloaded from VidDown",
	})
}

func DeleteDownload(rw http.ResponseWriter, r *http.Request) {
	if err := ctxlibrary.GetStore(r.Context()).RemoveRecord(r.Context(), models.RecordID(mux.Vars(r)["id"])); err != nil {
		httputil.InternalError(rw, r, err)
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}
