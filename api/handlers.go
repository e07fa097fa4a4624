package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"stackbattle-server/auth"
	"stackbattle-server/config"
	"stackbattle-server/game"
	"stackbattle-server/storage"
	"stackbattle-server/ws"
)

const bearerPrefix = "Bearer "

// RoomLister is what the handlers need from the room registry.
type RoomLister interface {
	List() []game.RoomInfo
	Create() string
}

// StatsSource is what the handlers need from the hub.
type StatsSource interface {
	Stats() ws.Stats
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Config     *config.Config
	RoomSource RoomLister
	Hub        StatsSource
	Store      storage.RoundStore
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(cfg *config.Config, rooms RoomLister, hub StatsSource, store storage.RoundStore) *Handler {
	return &Handler{Config: cfg, RoomSource: rooms, Hub: hub, Store: store}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// roomSummary is one row of the room listing.
type roomSummary struct {
	ID         string `json:"id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
}

// Rooms lists joinable (waiting) rooms on GET and creates a room on POST.
func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := []roomSummary{}
		for _, info := range h.RoomSource.List() {
			if info.Phase != game.Waiting {
				continue
			}
			list = append(list, roomSummary{
				ID:         info.ID,
				Players:    info.PlayerCount,
				MaxPlayers: h.Config.MaxPlayers,
			})
		}
		writeJSON(w, map[string]any{"rooms": list})
	case http.MethodPost:
		id := h.RoomSource.Create()
		writeJSON(w, map[string]string{"room_id": id})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Stats returns process-wide room and connection counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	infos := h.RoomSource.List()
	seats := 0
	for _, info := range infos {
		seats += info.PlayerCount
	}
	stats := h.Hub.Stats()
	writeJSON(w, map[string]any{
		"rooms":             len(infos),
		"seats":             seats,
		"clients":           stats.Clients,
		"connections_total": stats.Connections,
		"unique_visitors":   stats.UniqueVisitors,
	})
}

// Leaderboard returns players ordered by fewest losses.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list := []storage.LeaderboardEntry{}
	if h.Store != nil {
		var err error
		list, err = h.Store.ListLeaderboard(r.Context(), limit, offset)
		if err != nil {
			log.Printf("leaderboard query failed: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []storage.LeaderboardEntry{}
		}
	}
	writeJSON(w, map[string]any{"leaderboard": list})
}

// History returns the rounds lost by the authenticated user.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	list := []storage.RoundRecord{}
	if h.Store != nil {
		var err error
		list, err = h.Store.ListByUserID(r.Context(), userID)
		if err != nil {
			log.Printf("history query failed: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []storage.RoundRecord{}
		}
	}
	writeJSON(w, map[string]any{"history": list})
}

// extractUserID validates the Authorization header and returns the user ID,
// or empty string on failure.
func (h *Handler) extractUserID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
	if err != nil {
		return ""
	}
	return auth.UserIDFromClaims(claims)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}
