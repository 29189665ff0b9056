package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleViewer, PermDatasetView, true},
		{RoleViewer, PermAnnotationCreate, false},
		{RoleAnnotator, PermAnnotationCreate, true},
		{RoleAnnotator, PermAnnotationExport, true},
		{RoleAnnotator, PermDatasetReload, false},
		{RoleAdmin, PermDatasetReload, true},
		{"", PermDatasetView, false},
		{"ghost", PermDatasetView, false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
	if !c.Any(RoleViewer, PermAnnotationExport, PermDatasetView) {
		t.Error("Any should accept a single matching permission")
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermAnnotationCreate)(ok)

	for role, want := range map[string]int{
		"":            http.StatusForbidden,
		RoleViewer:    http.StatusForbidden,
		RoleAnnotator: http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if role != "" {
			req = req.WithContext(WithRole(req.Context(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}

func TestAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), RoleViewer))
	if Allowed(req, PermAnnotationExport) {
		t.Error("viewer must not export")
	}
}
