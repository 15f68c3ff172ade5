// internal/httpserver/routes_achievements.go
//
// Achievement endpoints:
//   - GET  /achievements/          → catalog with earned flags
//   - GET  /achievements/progress  → progress toward every achievement
//   - POST /achievements/check     → grant anything now due
//
// Profile endpoints (require auth):
//   - GET  /stats/me       → the caller's player record
//   - POST /stats/friends  → report friends count, grants social achievements

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountAchievements(r chi.Router) {
	r.Route("/achievements", func(r chi.Router) {
		r.Get("/", s.handleAchievements)
		r.Get("/progress", s.handleAchievementProgress)
		r.Post("/check", s.handleCheckAchievements)
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Achievements(r.Context(), s.userID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAchievementProgress(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.AchievementProgress(r.Context(), s.userID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	granted, err := s.svc.CheckAchievements(r.Context(), s.userID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"newAchievements": granted})
}

// Profile endpoints; mounted behind requireAuth.

func (s *Server) mountStats(r chi.Router) {
	r.Get("/stats/me", s.handleStatsMe)
	r.Post("/stats/friends", s.handleFriends)
}

func (s *Server) handleStatsMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetPlayer(r.Context(), authedUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type friendsReq struct {
	Count int `json:"count"`
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	var req friendsReq
	if !decode(w, r, &req) {
		return
	}
	p, granted, err := s.svc.UpdateFriendsCount(r.Context(), authedUser(r), req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": p.Stats, "newAchievements": granted})
}
