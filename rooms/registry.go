// Package rooms owns the process-wide room directory. Room creation and
// removal are serialized per identifier; everything inside a room is owned
// by that room's goroutine.
package rooms

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"stackbattle-server/config"
	"stackbattle-server/game"
)

// Registry maps room ids to live rooms.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*game.Room
	config   *config.Config
	roundEnd func(res game.RoundResult)
}

// NewRegistry creates an empty registry. onRoundEnd is attached to every
// room it creates; may be nil.
func NewRegistry(cfg *config.Config, onRoundEnd func(res game.RoundResult)) *Registry {
	return &Registry{
		rooms:    make(map[string]*game.Room),
		config:   cfg,
		roundEnd: onRoundEnd,
	}
}

// GetOrCreate returns the room with the given id, creating and starting it
// if needed. A room is created on first reference to its identifier.
func (reg *Registry) GetOrCreate(id string) *game.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[id]; ok {
		return room
	}
	room := game.NewRoom(id, reg.config)
	room.OnEmpty = reg.remove
	room.OnRoundEnd = reg.roundEnd
	reg.rooms[id] = room
	go room.Run()
	slog.Info("room created", "tag", "rooms", "room", id)
	return room
}

// Get returns the room with the given id, if it exists.
func (reg *Registry) Get(id string) (*game.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// Create makes a room under a fresh short identifier (REST room creation).
func (reg *Registry) Create() string {
	id := uuid.NewString()[:8]
	reg.GetOrCreate(id)
	return id
}

// remove drops an emptied room. Called from the room's own goroutine right
// before it exits.
func (reg *Registry) remove(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, id)
	slog.Info("room removed", "tag", "rooms", "room", id)
}

// List returns a summary of every live room.
func (reg *Registry) List() []game.RoomInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	infos := make([]game.RoomInfo, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		infos = append(infos, room.Info())
	}
	return infos
}
