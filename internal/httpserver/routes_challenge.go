// internal/httpserver/routes_challenge.go
//
// Daily challenge endpoints under /challenge:
//   - GET  /challenge/today          → today's challenge as seen by the caller
//   - POST /challenge/today/attempt  → submit a guess for today's challenge
//   - GET  /challenge/history        → past challenges, newest first
//
// The first request of a UTC day creates that day's challenge; every
// request after that, from any replica, sees the same one.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountChallenge(r chi.Router) {
	r.Route("/challenge", func(r chi.Router) {
		r.Get("/today", s.handleTodayChallenge)
		r.Post("/today/attempt", s.handleChallengeAttempt)
		r.Get("/history", s.handleChallengeHistory)
	})
}

func (s *Server) handleTodayChallenge(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.GetTodayChallenge(r.Context(), s.userID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"challenge": v})
}

type attemptReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleChallengeAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptReq
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Guess) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "guess_required"})
		return
	}
	res, err := s.svc.SubmitChallengeAttempt(r.Context(), s.userID(w, r), req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChallengeHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.ChallengeHistory(r.Context(), s.userID(w, r), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
