// internal/handlers/sessions.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/munchkin/internal/game"
)

// ListSessionsHandler returns every live session as JSON.
func ListSessionsHandler(store *game.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(store.List())
	}
}
