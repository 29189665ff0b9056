package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/mathviz/internal/problem"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, problem.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, problem.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), httpStatus(err))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// recordView is the wire form of a problem.Record.
type recordView struct {
	ID       string         `json:"id"`
	Path     string         `json:"path"`
	Index    *int           `json:"index,omitempty"`
	Family   string         `json:"family"`
	Problem  string         `json:"problem"`
	Solution string         `json:"solution"`
	Fields   map[string]any `json:"fields"`
}

func toView(r problem.Record) *recordView {
	if r == nil {
		return nil
	}
	id := r.ID()
	v := &recordView{
		ID:       id.String(),
		Path:     id.Path,
		Family:   string(r.Family()),
		Problem:  r.ProblemText(),
		Solution: r.SolutionText(),
		Fields:   r.Fields(),
	}
	if id.IsElement() {
		idx := id.Index
		v.Index = &idx
	}
	return v
}
