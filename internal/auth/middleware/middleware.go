package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mathviz/internal/rbac"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration

	adminUser string
	adminHash []byte
	// devLogin accepts username == password for non-admin roles.
	devLogin bool
}

type Option func(*AuthService)

// WithAdmin enables the admin account; hash is a bcrypt hash.
func WithAdmin(user, hash string) Option {
	return func(a *AuthService) {
		if user != "" && hash != "" {
			a.adminUser, a.adminHash = user, []byte(hash)
		}
	}
}

func WithDevLogin(on bool) Option { return func(a *AuthService) { a.devLogin = on } }

func NewAuthService(secret string, opts ...Option) *AuthService {
	a := &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour}
	for _, o := range opts {
		o(a)
	}
	return a
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // viewer|annotator|admin
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mathviz",
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Role == "" {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}

var errBadCredentials = errors.New("invalid credentials")

// Authenticate resolves the role for a username/password pair.
func (a *AuthService) Authenticate(username, password, role string) (string, error) {
	if username == "" {
		return "", errBadCredentials
	}
	if a.adminUser != "" && username == a.adminUser {
		if bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) != nil {
			return "", errBadCredentials
		}
		return rbac.RoleAdmin, nil
	}
	if !a.devLogin || username != password {
		return "", errBadCredentials
	}
	switch role {
	case "":
		return rbac.RoleAnnotator, nil
	case rbac.RoleAnnotator, rbac.RoleViewer:
		return role, nil
	}
	return "", errBadCredentials
}

// POST /auth/login  { "username": "...", "password": "...", "role": "annotator|viewer" }
func LoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role, err := a.Authenticate(req.Username, req.Password, req.Role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware verifies the bearer token and puts subject and role in the
// request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
