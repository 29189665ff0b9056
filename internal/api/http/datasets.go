package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/dataset"
)

type datasetSummary struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Mode        dataset.Mode       `json:"mode"`
	Facets      []string           `json:"facets"`
	SortKeys    []string           `json:"sort_keys"`
	DefaultSort string             `json:"default_sort"`
	Size        int                `json:"size"`
	Files       []dataset.FileInfo `json:"files,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	LoadedAt    string             `json:"loaded_at,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func summarize(svc *browse.Service, name string) datasetSummary {
	v, ds, err := svc.LoadDataset(name)
	out := datasetSummary{Name: name}
	if v != nil {
		out.Title, out.Mode, out.Facets = v.Title, v.Mode, v.Facets
		out.SortKeys, out.DefaultSort = v.SortKeys, v.DefaultSort
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Size = len(ds.Records)
	out.Files = ds.Files
	out.LoadedAt = ds.LoadedAt.UTC().Format(time.RFC3339)
	for _, w := range ds.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}

// GET /datasets
func ListDatasetsHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vs := svc.Variants()
		out := make([]datasetSummary, 0, len(vs))
		for _, v := range vs {
			out = append(out, summarize(svc, v.Name))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /datasets/{variant}/reload
func ReloadDatasetHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "variant")
		if _, err := svc.Reload(name); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summarize(svc, name))
	}
}

// GET /datasets/{variant}/facets
func FacetsHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ds, err := svc.LoadDataset(chi.URLParam(r, "variant"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make(map[string][]string, len(v.Facets))
		for _, f := range v.Facets {
			out[f] = browse.ListFacetValues(ds.Records, f)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /datasets/{variant}/facets/{facet}
func FacetValuesHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ds, err := svc.LoadDataset(chi.URLParam(r, "variant"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, browse.ListFacetValues(ds.Records, chi.URLParam(r, "facet")))
	}
}

// GET /datasets/{variant}/scale
func ScaleHandler(svc *browse.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Scale(chi.URLParam(r, "variant"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}
