package ws

import (
	"encoding/json"

	"stackbattle-server/game"
)

// InboundEnvelope is the generic envelope for all client-to-server commands.
// The Action field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Action string          `json:"action"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the action tag and keeps the raw payload around for
// the per-action decoders.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type actionOnly struct {
		Action string `json:"action"`
	}
	var a actionOnly
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Action = a.Action
	e.Raw = json.RawMessage(data)
	return nil
}

// PlaceCardMsg places the held card on a seat's visible stack.
type PlaceCardMsg struct {
	Action   string    `json:"action"`
	Card     game.Card `json:"card"`
	TargetID string    `json:"target_player_id"`
}

// GiveFromStackMsg moves the sender's stack top to another seat's stack.
type GiveFromStackMsg struct {
	Action   string `json:"action"`
	TargetID string `json:"target_player_id"`
}

// DonateCardsMsg transfers chosen hand cards to penalty recipients.
// Donations maps recipient seat id to hand-card indices.
type DonateCardsMsg struct {
	Action    string           `json:"action"`
	Donations map[string][]int `json:"donations"`
}

// PlayCardMsg plays a card onto the battle pile.
type PlayCardMsg struct {
	Action string    `json:"action"`
	Card   game.Card `json:"card"`
}
