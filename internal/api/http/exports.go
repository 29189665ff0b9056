package http

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mathviz/internal/export"
	"github.com/mind-engage/mathviz/internal/rbac"
)

// MountExports serves the export ledger and stored documents.
func MountExports(r chi.Router, sink *export.Sink) {
	// GET /exports?variant=&limit=
	r.With(rbac.Require(rbac.PermAnnotationExport)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		list, err := sink.List(r.Context(), r.URL.Query().Get("variant"), parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	// GET /exports/id/{id}
	r.With(rbac.Require(rbac.PermAnnotationExport)).Get("/id/{id}", func(w http.ResponseWriter, r *http.Request) {
		e, err := sink.Export(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})

	// GET /exports/*   -> the document stored under whatever follows /exports/
	r.With(rbac.RequireAny(rbac.PermAnnotationExport, rbac.PermDatasetView)).Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key, err := url.PathUnescape(strings.TrimPrefix(chi.URLParam(r, "*"), "/"))
		if err != nil {
			http.Error(w, "bad key", http.StatusBadRequest)
			return
		}
		rc, err := sink.Open(r.Context(), key)
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
		_, _ = io.Copy(w, rc)
	})
}
