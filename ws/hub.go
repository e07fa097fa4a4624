package ws

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"stackbattle-server/auth"
	"stackbattle-server/config"
	"stackbattle-server/game"
	"stackbattle-server/roomerrors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoomDirectory defines what the Hub needs from the room registry.
type RoomDirectory interface {
	GetOrCreate(id string) *game.Room
}

// Stats is a snapshot of process-wide connection counters.
type Stats struct {
	Clients        int `json:"clients"`
	Connections    int `json:"connections_total"`
	UniqueVisitors int `json:"unique_visitors"`
}

// Hub maintains the set of active clients and seats new connections into
// their rooms.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Rooms      RoomDirectory
	Config     *config.Config

	mu          sync.Mutex
	connections int
	visitors    map[string]struct{}
	clientCount int
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, rooms RoomDirectory) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Rooms:      rooms,
		Config:     cfg,
		visitors:   make(map[string]struct{}),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			h.setClientCount(len(h.Clients))
			log.Printf("Client connected. Total clients: %d", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				h.setClientCount(len(h.Clients))
				log.Printf("Client disconnected. Total clients: %d", len(h.Clients))

				if client.Room != nil {
					client.Room.Submit(game.Action{Type: game.ActionLeave, PlayerID: client.PlayerID})
				}
			}
		}
	}
}

func (h *Hub) setClientCount(n int) {
	h.mu.Lock()
	h.clientCount = n
	h.mu.Unlock()
}

// Stats returns current and cumulative connection counts.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Clients:        h.clientCount,
		Connections:    h.connections,
		UniqueVisitors: len(h.visitors),
	}
}

func (h *Hub) recordVisit(remoteAddr string) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	h.mu.Lock()
	h.connections++
	h.visitors[host] = struct{}{}
	h.mu.Unlock()
}

// ServeWS handles WebSocket upgrade requests, seats the player into the
// requested room, and starts the connection pumps.
// Expected query parameters: room (room id), name (display name), and an
// optional bearer token that attaches an authenticated identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.URL.Query().Get("room"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if roomID == "" || name == "" || len(name) > h.Config.MaxNameLength {
		http.Error(w, "room and name query parameters are required", http.StatusBadRequest)
		return
	}

	userID := ""
	if token := r.URL.Query().Get("token"); token != "" && h.Config.AuthBaseURL != "" {
		claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
		if err != nil {
			log.Printf("Rejected socket with invalid token: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = auth.UserIDFromClaims(claims)
		if n := auth.DisplayNameFromClaims(claims); n != "" {
			name = n
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	h.recordVisit(r.RemoteAddr)

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
		Name: name,
	}

	player := game.NewPlayer(uuid.NewString(), name, client.Send)
	player.UserID = userID
	client.PlayerID = player.ID

	if err := h.seat(client, player, roomID); err != nil {
		log.Printf("Seating failed for %q in room %s: %v", name, roomID, err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()),
			closeDeadline())
		conn.Close()
		return
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func closeDeadline() time.Time {
	return time.Now().Add(writeWait)
}

// seat joins the player to the room, retrying once if the room tore itself
// down between lookup and join.
func (h *Hub) seat(client *Client, player *game.Player, roomID string) error {
	for attempt := 0; attempt < 2; attempt++ {
		room := h.Rooms.GetOrCreate(roomID)
		err := room.Join(player)
		if errors.Is(err, roomerrors.ErrRoomClosed) {
			continue
		}
		if err != nil {
			return err
		}
		client.Room = room
		return nil
	}
	return roomerrors.ErrRoomClosed
}
