// internal/httpserver/routes_game.go
//
// Game endpoints:
//   - POST /game/new      → start (or resume) a session
//   - POST /game/guess    → submit a guess
//   - POST /game/powerup  → use a power-up
//   - GET  /game/history  → recent sessions, newest first

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordrush/internal/game"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Post("/powerup", s.handlePowerUp)
		r.Get("/history", s.handleGameHistory)
	})
}

type newGameReq struct {
	Level int `json:"level"` // optional; 0 starts at the highest unlocked level
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine

	v, err := s.svc.StartGame(r.Context(), s.userID(w, r), req.Level)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.SubmitGuess(r.Context(), req.GameID, req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type powerUpReq struct {
	GameID string       `json:"gameId"`
	Type   game.PowerUp `json:"type"`
}

func (s *Server) handlePowerUp(w http.ResponseWriter, r *http.Request) {
	var req powerUpReq
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.UsePowerUp(r.Context(), req.GameID, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.GameHistory(r.Context(), s.userID(w, r), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
