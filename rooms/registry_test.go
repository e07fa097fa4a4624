package rooms

import (
	"testing"
	"time"

	"stackbattle-server/config"
	"stackbattle-server/game"
)

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	reg := NewRegistry(config.Defaults(), nil)
	a := reg.GetOrCreate("alpha")
	b := reg.GetOrCreate("alpha")
	if a != b {
		t.Error("two lookups of the same id returned different rooms")
	}
	if _, ok := reg.Get("alpha"); !ok {
		t.Error("created room not found via Get")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get invented a room")
	}
}

func TestCreateMakesListedRoom(t *testing.T) {
	reg := NewRegistry(config.Defaults(), nil)
	id := reg.Create()
	if len(id) != 8 {
		t.Errorf("room id %q, want an 8-character identifier", id)
	}
	infos := reg.List()
	if len(infos) != 1 || infos[0].ID != id {
		t.Errorf("listing = %v, want the created room", infos)
	}
	if infos[0].Phase != game.Waiting {
		t.Errorf("new room phase = %v, want waiting", infos[0].Phase)
	}
}

func TestEmptiedRoomIsRemoved(t *testing.T) {
	reg := NewRegistry(config.Defaults(), nil)
	room := reg.GetOrCreate("beta")

	p := game.NewPlayer("p1", "Player1", nil)
	if err := room.Join(p); err != nil {
		t.Fatalf("join: %v", err)
	}
	room.Submit(game.Action{Type: game.ActionLeave, PlayerID: p.ID})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := reg.Get("beta"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("emptied room was never removed from the registry")
}
