package api

import (
	"log"
	"net/http"

	"datashare-backend/internal/websocket"
)

// ServeWsHandler upgrades to a websocket carrying the caller's file
// events. The token comes from the ?token query parameter or, failing
// that, the jwt_token cookie set at login.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		if cookie, err := r.Cookie("jwt_token"); err == nil {
			tokenString = cookie.Value
		}
	}
	if tokenString == "" {
		respondError(w, http.StatusUnauthorized, "token required")
		return
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		log.Printf("ws connection attempt with invalid token: %v", err)
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.UserID)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}
