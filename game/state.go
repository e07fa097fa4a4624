package game

// PlayerView is the seat summary every client receives. Hand and
// HiddenCards are filled only in the owner's own view; everyone else gets
// the counts.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"username"`
	Ready        bool   `json:"ready"`
	HandSize     int    `json:"hand_size"`
	VisibleStack []Card `json:"visible_stack"`
	HiddenCount  int    `json:"hidden_count"`
	IsOut        bool   `json:"is_out"`
	IsLoser      bool   `json:"is_loser"`
	LossCount    int    `json:"loss_count"`
	HasDonated   bool   `json:"has_donated,omitempty"`

	Hand        []Card `json:"hand,omitempty"`
	HiddenCards []Card `json:"hidden_cards,omitempty"`
}

// DonationView is the aggregated penalty-log view shown during donation.
type DonationView struct {
	RecipientID string         `json:"recipient_id"`
	Count       int            `json:"count"`
	Given       map[string]int `json:"given"`
	Active      bool           `json:"active"`
}

// GameStateMsg is the full per-seat snapshot broadcast after any change.
type GameStateMsg struct {
	Type               string         `json:"type"`
	Phase              string         `json:"phase"`
	Players            []PlayerView   `json:"players"`
	CurrentPlayerIndex int            `json:"current_player_index"`
	TrumpSuit          string         `json:"trump_suit,omitempty"`
	DeckSize           int            `json:"deck_size"`
	BattlePile         []Card         `json:"battle_pile"`
	DiscardCount       int            `json:"discard_count"`
	Penalties          []Penalty      `json:"penalties,omitempty"`
	Donations          []DonationView `json:"donations,omitempty"`
	RevealInProgress   bool           `json:"reveal_in_progress"`
	PlayerID           string         `json:"player_id"`
}

// ErrorMsg reports a rejected action to its sender only.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NotificationMsg carries informational gameplay events.
type NotificationMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoundOverMsg announces the round's loser and winners.
type RoundOverMsg struct {
	Type      string   `json:"type"`
	LoserID   string   `json:"loser_id"`
	LoserName string   `json:"loser_name"`
	Winners   []string `json:"winners"`
	YouLost   bool     `json:"you_lost"`
}

// BuildStateFor assembles the snapshot tailored to one seat: own hand and
// hidden reserve are included, other seats expose only counts.
func (r *Room) BuildStateFor(viewer *Player) GameStateMsg {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		view := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Ready:        p.Ready,
			HandSize:     len(p.Hand),
			VisibleStack: append([]Card{}, p.VisibleStack...),
			HiddenCount:  len(p.HiddenReserve),
			IsOut:        p.IsOut,
			IsLoser:      p.IsLoser,
			LossCount:    p.LossCount,
			HasDonated:   p.HasDonated,
		}
		if p.ID == viewer.ID {
			view.Hand = append([]Card{}, p.Hand...)
			view.HiddenCards = append([]Card{}, p.HiddenReserve...)
		}
		players = append(players, view)
	}

	msg := GameStateMsg{
		Type:               "game_state",
		Phase:              r.Phase.String(),
		Players:            players,
		CurrentPlayerIndex: r.CurrentPlayerIndex,
		TrumpSuit:          string(r.TrumpSuit),
		DeckSize:           len(r.Deck),
		BattlePile:         append([]Card{}, r.BattlePile...),
		DiscardCount:       len(r.DiscardPile),
		RevealInProgress:   r.RevealInProgress,
		PlayerID:           viewer.ID,
	}

	switch r.Phase {
	case Donation:
		msg.Donations = make([]DonationView, 0, len(r.DonationEntries))
		for i, entry := range r.DonationEntries {
			given := make(map[string]int, len(entry.Given))
			for id, n := range entry.Given {
				given[id] = n
			}
			msg.Donations = append(msg.Donations, DonationView{
				RecipientID: entry.RecipientID,
				Count:       entry.Count,
				Given:       given,
				Active:      i == r.DonationIndex,
			})
		}
	default:
		msg.Penalties = append([]Penalty{}, r.PenaltyLog...)
	}
	return msg
}
