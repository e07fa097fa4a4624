package game

// Player is one seat in a room. Hand, VisibleStack and HiddenReserve are
// meaningful per phase: during phase one the hand holds at most the one drawn
// card, during the battle phase it is unbounded. LossCount and IsLoser
// persist across rounds; everything else is round-scoped.
type Player struct {
	ID     string
	Name   string
	UserID string // optional authenticated identity; empty for guests
	Ready  bool

	Hand          []Card
	VisibleStack  []Card
	HiddenReserve []Card

	IsOut         bool
	IsLoser       bool
	LossCount     int
	PickedReserve bool
	HasDonated    bool

	Send chan []byte // the owning client's send channel
}

// NewPlayer creates a seated player with the given identity and send channel.
func NewPlayer(id, name string, send chan []byte) *Player {
	return &Player{ID: id, Name: name, Send: send}
}

// resetForRound clears all round-scoped state. LossCount survives, and so
// does IsLoser: it marks the previous round's loser until a new loss ends
// the next round.
func (p *Player) resetForRound() {
	p.Hand = nil
	p.VisibleStack = nil
	p.HiddenReserve = nil
	p.IsOut = false
	p.PickedReserve = false
	p.HasDonated = false
}

// holdsNothing reports whether the seat has played out completely: empty
// hand, empty reserve, and the reserve already picked up.
func (p *Player) holdsNothing() bool {
	return len(p.Hand) == 0 && len(p.HiddenReserve) == 0 && p.PickedReserve
}
