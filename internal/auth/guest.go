package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	authmw "github.com/mind-engage/mathviz/internal/auth/middleware"
	"github.com/mind-engage/mathviz/internal/rbac"
)

const guestCookie = "mv_guest_id"

// GuestLoginHandler issues read-only viewer tokens. A browser keeps its guest
// identity across logins through a cookie.
func GuestLoginHandler(a *authmw.AuthService, secureCookie bool) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
		Role        string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub := ""
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, "guest|") {
			sub = c.Value
		}
		if sub == "" {
			sub = "guest|" + uuid.New().String()
		}

		tok, err := a.IssueJWT(sub, rbac.RoleViewer)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		c := &http.Cookie{
			Name:     guestCookie,
			Value:    sub,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		}
		if secureCookie {
			c.SameSite = http.SameSiteNoneMode
		}
		http.SetCookie(w, c)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: "guest-" + sub[len(sub)-6:], Role: rbac.RoleViewer})
	}
}
