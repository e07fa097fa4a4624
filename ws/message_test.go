package ws

import (
	"encoding/json"
	"testing"

	"stackbattle-server/game"
)

func TestInboundEnvelopeKeepsRawPayload(t *testing.T) {
	data := []byte(`{"action":"place_card","card":{"suit":"hearts","rank":9},"target_player_id":"p2"}`)

	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Action != "place_card" {
		t.Errorf("action = %q, want place_card", envelope.Action)
	}

	var msg PlaceCardMsg
	if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.Card != (game.Card{Suit: game.Hearts, Rank: 9}) {
		t.Errorf("card = %v", msg.Card)
	}
	if msg.TargetID != "p2" {
		t.Errorf("target = %q, want p2", msg.TargetID)
	}
}

func TestInboundEnvelopeRejectsInvalidJSON(t *testing.T) {
	var envelope InboundEnvelope
	if err := json.Unmarshal([]byte(`{"action":`), &envelope); err == nil {
		t.Error("invalid JSON must not decode")
	}
}

func TestDonateCardsMsg(t *testing.T) {
	data := []byte(`{"action":"donate_cards","donations":{"p1":[0,2]}}`)
	var msg DonateCardsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := msg.Donations["p1"]; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("donations = %v", msg.Donations)
	}
}
