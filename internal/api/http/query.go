package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/filter"
)

type queryRequest struct {
	filter.Spec
	Sort     string `json:"sort"`
	Selected string `json:"selected"`
	Fallback bool   `json:"fallback"`
}

type queryResponse struct {
	Total      int         `json:"total"`
	Filtered   int         `json:"filtered"`
	Percentage float64     `json:"percentage"`
	Sort       string      `json:"sort"`
	IDs        []string    `json:"ids"`
	Selected   *recordView `json:"selected"`
	Fallback   bool        `json:"fallback"`
}

// POST /datasets/{variant}/query
func QueryHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		view, err := svc.Query(chi.URLParam(r, "variant"), browse.Query{
			Filter:   req.Spec,
			Sort:     strings.TrimSpace(req.Sort),
			Selected: strings.TrimSpace(req.Selected),
			Fallback: req.Fallback,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		ids := make([]string, len(view.Order))
		for i, id := range view.Order {
			ids[i] = id.String()
		}
		writeJSON(w, http.StatusOK, queryResponse{
			Total:      view.Total,
			Filtered:   view.Filtered,
			Percentage: view.Percentage,
			Sort:       view.Sort,
			IDs:        ids,
			Selected:   toView(view.Record),
			Fallback:   view.Fallback,
		})
	}
}

// GET /datasets/{variant}/records/*
func RecordHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := url.PathUnescape(strings.TrimPrefix(chi.URLParam(r, "*"), "/"))
		if err != nil {
			http.Error(w, "bad record id", http.StatusBadRequest)
			return
		}
		_, _, rec, err := svc.Record(chi.URLParam(r, "variant"), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toView(rec))
	}
}
