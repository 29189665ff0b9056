package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mathviz/internal/annotate"
	authmw "github.com/mind-engage/mathviz/internal/auth/middleware"
	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/export"
	"github.com/mind-engage/mathviz/internal/rbac"
)

type annotationRequest struct {
	RecordID string `json:"record_id"`
	annotate.Form
}

// POST /datasets/{variant}/annotations[?save=1]
//
// The response body is the export document. With save=1 the document is also
// stored through the sink and the ledger id is returned in X-Export-ID.
func AnnotateHandler(svc *browse.Service, sink *export.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req annotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.RecordID) == "" {
			http.Error(w, "record_id required", http.StatusBadRequest)
			return
		}
		save := r.URL.Query().Get("save") == "1"
		if save {
			if sink == nil {
				http.Error(w, "exports disabled", http.StatusNotImplemented)
				return
			}
			if !rbac.Allowed(r, rbac.PermAnnotationExport) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		sub := authmw.SubjectFromContext(r.Context())
		if strings.TrimSpace(req.Annotator) == "" {
			req.Annotator = sub
		}
		variant := chi.URLParam(r, "variant")
		doc, filename, err := svc.AssembleAnnotation(variant, req.RecordID, req.Form)
		if err != nil {
			writeErr(w, err)
			return
		}

		var buf bytes.Buffer
		if err := annotate.Encode(&buf, doc); err != nil {
			writeErr(w, err)
			return
		}
		status := http.StatusOK
		if save {
			e, err := sink.Save(r.Context(), variant, filename, sub, doc)
			if err != nil {
				writeErr(w, err)
				return
			}
			w.Header().Set("X-Export-ID", e.ID)
			w.Header().Set("Location", "/exports/"+e.BlobKey)
			status = http.StatusCreated
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
	}
}
