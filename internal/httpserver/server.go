// internal/httpserver/server.go
//
// HTTP adapter over the progression service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: /game/* (optional auth, guests play under an anon cookie).
//   - Daily challenge endpoints: /challenge/* (optional auth).
//   - Achievement endpoints: /achievements/* (optional auth).
//   - Profile endpoints: /stats/* (require auth).
//
// Notes:
//   - Tokens are issued by the account service; this server only verifies
//     HS256 JWTs and reads the "id" claim as the user id.
//   - Domain errors map to status codes via apperr.HTTPStatus and are
//     returned as {"error": CODE, "message": text}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordrush/internal/apperr"
	"github.com/robalobadob/wordrush/internal/service"
)

// Options configures the adapter.
type Options struct {
	ClientOrigin string // CORS origin; credentials are allowed
	JWTSecret    string
	CookieName   string // auth token cookie, default "wordrush_token"
	Secure       bool   // mark cookies Secure + SameSite=None
}

// Server bundles the router and the service it fronts.
type Server struct {
	r    *chi.Mux
	svc  *service.Service
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *service.Service, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.CookieName == "" {
		opts.CookieName = "wordrush_token"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	s := &Server{r: chi.NewRouter(), svc: svc, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordrush",
			"endpoints": []string{"/health", "/game/*", "/challenge/*", "/achievements/*", "/stats/me"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		counts := map[string]int{}
		for n, c := range s.svc.WordStats() {
			counts[strconv.Itoa(n)] = c
		}
		writeJSON(w, http.StatusOK, counts)
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		s.mountGame(r)
		s.mountChallenge(r)
		s.mountAchievements(r)
	})
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		s.mountStats(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router (used by tests and the http.Server in main).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- identity ----------------------------------

// ctxUserKey is the context key for the authenticated user id.
type ctxUserKey struct{}

const (
	anonCookieName = "wordrush_anon"
	anonPrefix     = "anon:" // guest ids; never accepted from a token
)

// userFromToken verifies tok and returns its "id" claim.
func (s *Server) userFromToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", errors.New("token has no id claim")
	}
	if strings.HasPrefix(id, anonPrefix) {
		return "", errors.New("token id uses the guest namespace")
	}
	return id, nil
}

// withOptionalAuth decorates requests with the user id when a valid JWT is
// present. It never 401s.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.bearerOrCookie(r); tok != "" {
			if id, err := s.userFromToken(tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth enforces a valid JWT.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		id, err := s.userFromToken(tok)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, id)))
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or the auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// userID returns the authenticated user, or a stable guest id kept in a
// cookie so guests can play too.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) string {
	if id, _ := r.Context().Value(ctxUserKey{}).(string); id != "" {
		return id
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return anonPrefix + c.Value
	}
	id := uuid.New().String()
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return anonPrefix + id
}

// authedUser returns the id placed by requireAuth.
func authedUser(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserKey{}).(string)
	return id
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError maps err to a status code and a coded JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		if code == apperr.CodeUnknown {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": string(code), "message": msg})
}

// decode reads a JSON body into v, answering 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return false
	}
	return true
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
