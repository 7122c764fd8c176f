package api

import (
	"encoding/json"
	"net/http"

	"datashare-backend/internal/auth"
	"datashare-backend/internal/config"
	"datashare-backend/internal/database"
	"datashare-backend/internal/storage"
	"datashare-backend/internal/websocket"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	storage *storage.LocalStorage
	tokens  *auth.TokenIssuer
	wsHub   *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, storage *storage.LocalStorage, tokens *auth.TokenIssuer, wsHub *websocket.Hub) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		storage: storage,
		tokens:  tokens,
		wsHub:   wsHub,
	}
}

// MessageResponse is the body of every non-payload response: successes
// that only carry a message and all 4xx/5xx outcomes.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, MessageResponse{Message: message})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}
