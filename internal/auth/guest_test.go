package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authmw "github.com/mind-engage/mathviz/internal/auth/middleware"
	"github.com/mind-engage/mathviz/internal/rbac"
)

func TestGuestLogin_ReusesCookie(t *testing.T) {
	a := authmw.NewAuthService("k")
	h := GuestLoginHandler(a, false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != guestCookie {
		t.Fatalf("cookies = %v", cookies)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	c, err := a.Parse(body.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if c.Role != rbac.RoleViewer || c.Sub != cookies[0].Value {
		t.Errorf("claims = %+v", c)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/guest", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Result().Cookies()[0].Value; got != cookies[0].Value {
		t.Errorf("guest id changed: %q -> %q", cookies[0].Value, got)
	}
}
