package game

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"stackbattle-server/config"
	"stackbattle-server/roomerrors"
	"stackbattle-server/wsutil"
)

// Phase is the room's top-level state.
type Phase int

const (
	Waiting Phase = iota
	PhaseOne
	Donation
	PhaseTwo
	// Finished is a reserved terminal state; normal play cycles back to
	// Waiting and never reaches it.
	Finished
)

// String returns the protocol string for a Phase.
func (ph Phase) String() string {
	switch ph {
	case Waiting:
		return "waiting"
	case PhaseOne:
		return "phase_one"
	case Donation:
		return "donation"
	case PhaseTwo:
		return "phase_two"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// ActionType enumerates the commands a room can process.
type ActionType int

const (
	ActionJoin ActionType = iota
	ActionLeave
	ActionReady
	ActionDrawCard
	ActionPlaceCard
	ActionGiveFromStack
	ActionEndTurn
	ActionDonateCards
	ActionPlayCard
	ActionTakePile
	ActionResolvePile // internal: fired after the pile reveal interval expires
)

// Action is one command sent into the room's action channel.
type Action struct {
	Type     ActionType
	PlayerID string

	Card Card
	// TargetID is the target seat for place_card / give_from_stack.
	TargetID string
	// Donations maps recipient seat id to chosen hand-card indices.
	Donations map[string][]int

	// Player and Reply are set for ActionJoin only.
	Player *Player
	Reply  chan error

	// revealSeq is set for ActionResolvePile; a stale timer whose sequence
	// no longer matches is ignored.
	revealSeq int
}

// Penalty is one entry of the chronological infraction record.
type Penalty struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

// DonationEntry is one aggregated obligation: every other seat owes the
// recipient Count cards. Given tracks cards transferred so far per donor.
type DonationEntry struct {
	RecipientID string
	Count       int
	Given       map[string]int
}

// RoomInfo is a point-in-time summary of a room, safe to read from any
// goroutine (see Info).
type RoomInfo struct {
	ID          string
	Phase       Phase
	PlayerCount int
}

// RoundResult describes a finished round for the persistence hook.
type RoundResult struct {
	RoomID      string
	LoserID     string
	LoserUserID string
	LoserName   string
	PlayerNames []string
	Duration    time.Duration
}

// Room holds all state for one game room and the machinery to mutate it.
// All fields below the config are owned by the Run goroutine; outside
// goroutines interact only through Actions, Done and Info.
type Room struct {
	ID      string
	Config  *config.Config
	Actions chan Action
	Done    chan struct{}

	// OnEmpty is called from the room goroutine, right before it exits,
	// when the last player has left. Set by the registry.
	OnEmpty func(roomID string)
	// OnRoundEnd is called after each completed round; optional.
	OnRoundEnd func(res RoundResult)

	Players            []*Player
	Phase              Phase
	Deck               []Card
	CurrentPlayerIndex int
	TrumpSuit          Suit // empty until derived at deck exhaustion
	BattlePile         []Card
	DiscardPile        []Card
	DrawnOrder         []Card
	PenaltyLog         []Penalty

	DonationEntries []*DonationEntry
	DonationIndex   int

	PreviousLosers []string
	// firstBattleSeat is the seat that drew the last deck card; it opens
	// the battle phase.
	firstBattleSeat string
	// lastPilePlayerID is the seat that played the current pile's top card.
	lastPilePlayerID string

	RevealInProgress bool
	revealSeq        int
	pending          []Action

	roundStarted time.Time

	mu   sync.Mutex
	info RoomInfo
}

// NewRoom creates a room. Run must be started as a goroutine before any
// action is sent.
func NewRoom(id string, cfg *config.Config) *Room {
	r := &Room{
		ID:      id,
		Config:  cfg,
		Actions: make(chan Action, 32),
		Done:    make(chan struct{}),
		Phase:   Waiting,
	}
	r.publishInfo()
	return r
}

// Join seats a player, serialized through the room goroutine. Fails when the
// room is full or already torn down.
func (r *Room) Join(p *Player) error {
	reply := make(chan error, 1)
	select {
	case r.Actions <- Action{Type: ActionJoin, Player: p, Reply: reply}:
	case <-r.Done:
		return roomerrors.ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.Done:
		return roomerrors.ErrRoomClosed
	}
}

// Submit queues a command without blocking room teardown.
func (r *Room) Submit(a Action) {
	select {
	case r.Actions <- a:
	case <-r.Done:
	}
}

// Info returns the latest published room summary.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

func (r *Room) publishInfo() {
	r.mu.Lock()
	r.info = RoomInfo{ID: r.ID, Phase: r.Phase, PlayerCount: len(r.Players)}
	r.mu.Unlock()
}

// Run is the room's main loop. Commands are applied strictly one at a time;
// while a pile reveal is in progress, player commands are buffered and
// replayed once the discard has resolved. Returns when the room empties.
func (r *Room) Run() {
	defer close(r.Done)
	for action := range r.Actions {
		if r.apply(action) {
			return
		}
	}
}

// apply dispatches one action. Returns true when the room should shut down.
func (r *Room) apply(action Action) (done bool) {
	switch action.Type {
	case ActionJoin:
		action.Reply <- r.handleJoin(action.Player)
	case ActionLeave:
		if r.handleLeave(action.PlayerID) {
			return true
		}
	case ActionResolvePile:
		r.handleResolvePile(action.revealSeq)
		for _, queued := range r.takePending() {
			if r.apply(queued) {
				return true
			}
		}
	default:
		if r.RevealInProgress {
			r.pending = append(r.pending, action)
			break
		}
		r.dispatchCommand(action)
	}
	r.publishInfo()
	return false
}

func (r *Room) takePending() []Action {
	queued := r.pending
	r.pending = nil
	return queued
}

// dispatchCommand routes a player command through the (phase, action) table.
// Anything outside its phase is rejected without touching room state.
func (r *Room) dispatchCommand(action Action) {
	p := r.playerByID(action.PlayerID)
	if p == nil {
		return
	}
	switch {
	case action.Type == ActionReady && r.Phase == Waiting:
		r.handleReady(p)
	case action.Type == ActionDrawCard && r.Phase == PhaseOne:
		r.handleDrawCard(p)
	case action.Type == ActionPlaceCard && r.Phase == PhaseOne:
		r.handlePlaceCard(p, action.Card, action.TargetID)
	case action.Type == ActionGiveFromStack && r.Phase == PhaseOne:
		r.handleGiveFromStack(p, action.TargetID)
	case action.Type == ActionEndTurn && r.Phase == PhaseOne:
		r.handleEndTurnCommand(p)
	case action.Type == ActionDonateCards && r.Phase == Donation:
		r.handleDonateCards(p, action.Donations)
	case action.Type == ActionPlayCard && r.Phase == PhaseTwo:
		r.handlePlayCard(p, action.Card)
	case action.Type == ActionTakePile && r.Phase == PhaseTwo:
		r.handleTakePile(p)
	default:
		r.sendError(p, "That action is not valid in the current phase.")
	}
}

func (r *Room) handleJoin(p *Player) error {
	if len(r.Players) >= r.Config.MaxPlayers {
		return roomerrors.ErrRoomFull
	}
	// A seat added mid-round would hold no cards and could never advance
	// the turn once it became current.
	if r.Phase != Waiting {
		return roomerrors.ErrRoundInProgress
	}
	r.Players = append(r.Players, p)
	// A new seat re-opens the ready vote.
	for _, other := range r.Players {
		other.Ready = false
	}
	r.notifyAll(p.Name + " joined; ready states were reset.")
	slog.Info("player joined", "tag", "game", "room", r.ID, "player", p.Name, "seats", len(r.Players))
	r.broadcastState()
	return nil
}

// handleLeave removes a seat. Mid-round, the leaver's cards move to the
// discard pile so the 36-card partition stays intact. Returns true when the
// room is now empty and should be torn down.
func (r *Room) handleLeave(playerID string) bool {
	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	p := r.Players[idx]
	if r.Phase != Waiting {
		r.DiscardPile = append(r.DiscardPile, p.Hand...)
		r.DiscardPile = append(r.DiscardPile, p.VisibleStack...)
		r.DiscardPile = append(r.DiscardPile, p.HiddenReserve...)
	}
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	slog.Info("player left", "tag", "game", "room", r.ID, "player", p.Name, "seats", len(r.Players))

	if len(r.Players) == 0 {
		r.publishInfo()
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		return true
	}

	if r.CurrentPlayerIndex >= len(r.Players) {
		r.CurrentPlayerIndex = 0
	} else if idx < r.CurrentPlayerIndex {
		r.CurrentPlayerIndex--
	}

	if r.Phase != Waiting && r.activeCount() < 2 {
		// Not enough seats left to finish the round.
		r.resetToWaiting("not enough players to continue the round")
	} else if r.Phase == PhaseTwo {
		if r.currentPlayer().IsOut {
			r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
		}
		// With one seat fewer the exposed pile may already be complete.
		if !r.RevealInProgress && len(r.BattlePile) > 0 && len(r.BattlePile) >= r.activeCount() {
			r.beginPileReveal()
		}
	} else if r.Phase == Donation {
		// Re-position the donor rotation; the leaver may have been the
		// current donor or the current recipient.
		r.openCurrentEntry()
		if r.Phase != Donation {
			return false
		}
	}

	r.notifyAll(p.Name + " left the room.")
	r.broadcastState()
	return false
}

func (r *Room) handleReady(p *Player) {
	p.Ready = true
	if r.allReady() {
		r.startRound()
		return
	}
	r.broadcastState()
}

func (r *Room) allReady() bool {
	if len(r.Players) < r.Config.MinPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// startRound resets all round-scoped state, deals, and picks the first
// actor: a previous-round loser if one is still seated, else a random seat.
func (r *Room) startRound() {
	r.Phase = PhaseOne
	r.Deck = NewDeck()
	r.TrumpSuit = ""
	r.BattlePile = nil
	r.DiscardPile = nil
	r.DrawnOrder = nil
	r.PenaltyLog = nil
	r.DonationEntries = nil
	r.DonationIndex = 0
	r.firstBattleSeat = ""
	r.lastPilePlayerID = ""
	r.RevealInProgress = false
	r.roundStarted = time.Now()

	for _, p := range r.Players {
		p.resetForRound()
		reserve := r.Config.HiddenReserveBase + p.LossCount
		for i := 0; i < reserve && len(r.Deck) > 0; i++ {
			p.HiddenReserve = append(p.HiddenReserve, r.popDeck())
		}
		if len(r.Deck) > 0 {
			p.VisibleStack = append(p.VisibleStack, r.popDeck())
		}
	}

	r.CurrentPlayerIndex = r.firstSeatForRound()
	r.PreviousLosers = nil

	slog.Info("round started", "tag", "game", "room", r.ID, "seats", len(r.Players))
	r.broadcastState()
}

// firstSeatForRound prefers a seated previous-round loser, then falls back
// to a uniformly random seat.
func (r *Room) firstSeatForRound() int {
	for _, loserID := range r.PreviousLosers {
		for i, p := range r.Players {
			if p.ID == loserID {
				return i
			}
		}
	}
	return rand.Intn(len(r.Players))
}

func (r *Room) popDeck() Card {
	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	return card
}

// endRound marks the loser, everyone else as winners, and cycles back to
// Waiting.
func (r *Room) endRound(loser *Player) {
	loser.IsOut = true
	loser.IsLoser = true
	loser.LossCount++
	r.PreviousLosers = []string{loser.ID}

	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
		if p.ID != loser.ID {
			if p.IsLoser {
				p.IsLoser = false
			}
			p.IsOut = true
		}
		p.Ready = false
	}

	r.Phase = Waiting
	r.RevealInProgress = false
	r.revealSeq++

	slog.Info("round over", "tag", "game", "room", r.ID, "loser", loser.Name, "losses", loser.LossCount)
	r.broadcastRoundOver(loser)
	if r.OnRoundEnd != nil {
		r.OnRoundEnd(RoundResult{
			RoomID:      r.ID,
			LoserID:     loser.ID,
			LoserUserID: loser.UserID,
			LoserName:   loser.Name,
			PlayerNames: names,
			Duration:    time.Since(r.roundStarted),
		})
	}
	r.broadcastState()
}

// resetToWaiting abandons the current round without a loser. Used for
// invariant violations and for rooms that lose too many seats mid-round.
func (r *Room) resetToWaiting(reason string) {
	slog.Error("round abandoned", "tag", "game", "room", r.ID, "reason", reason)
	r.Phase = Waiting
	r.Deck = nil
	r.BattlePile = nil
	r.DiscardPile = nil
	r.DrawnOrder = nil
	r.PenaltyLog = nil
	r.DonationEntries = nil
	r.DonationIndex = 0
	r.TrumpSuit = ""
	r.RevealInProgress = false
	r.revealSeq++
	r.pending = nil
	for _, p := range r.Players {
		p.resetForRound()
		p.Ready = false
	}
	r.notifyAll("Round abandoned: " + reason)
}

// verifyConservation checks that the 36 distinct cards are partitioned
// exactly once across every zone. A violation is fatal to the round.
func (r *Room) verifyConservation() bool {
	seen := make(map[Card]bool, DeckSize)
	count := 0
	add := func(cards []Card) bool {
		for _, c := range cards {
			if seen[c] {
				return false
			}
			seen[c] = true
			count++
		}
		return true
	}
	ok := add(r.Deck) && add(r.BattlePile) && add(r.DiscardPile)
	for _, p := range r.Players {
		ok = ok && add(p.Hand) && add(p.VisibleStack) && add(p.HiddenReserve)
	}
	if !ok || count != DeckSize {
		r.resetToWaiting("card conservation violated")
		return false
	}
	return true
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) currentPlayer() *Player {
	if len(r.Players) == 0 {
		return nil
	}
	return r.Players[r.CurrentPlayerIndex]
}

// isTurn gates mutating commands on the acting seat being current.
func (r *Room) isTurn(p *Player) bool {
	current := r.currentPlayer()
	return current != nil && current.ID == p.ID
}

func (r *Room) activeCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.IsOut {
			n++
		}
	}
	return n
}

// nextActiveFrom returns the index of the next non-out seat after idx.
// Falls back to idx when no other seat is active.
func (r *Room) nextActiveFrom(idx int) int {
	for step := 1; step <= len(r.Players); step++ {
		candidate := (idx + step) % len(r.Players)
		if !r.Players[candidate].IsOut {
			return candidate
		}
	}
	return idx
}

func (r *Room) logPenalty(p *Player, reason string) {
	r.PenaltyLog = append(r.PenaltyLog, Penalty{PlayerID: p.ID, Reason: reason})
	r.notify(p, "Penalty: "+reason+".")
}

func (r *Room) send(p *Player, v any) {
	if p == nil || p.Send == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling message", "tag", "game", "err", err)
		return
	}
	wsutil.SafeSend(p.Send, data)
}

func (r *Room) sendError(p *Player, message string) {
	r.send(p, ErrorMsg{Type: "error", Message: message})
}

func (r *Room) notify(p *Player, message string) {
	r.send(p, NotificationMsg{Type: "notification", Message: message})
}

func (r *Room) notifyAll(message string) {
	for _, p := range r.Players {
		r.notify(p, message)
	}
}

func (r *Room) broadcastState() {
	for _, p := range r.Players {
		r.send(p, r.BuildStateFor(p))
	}
}

func (r *Room) broadcastRoundOver(loser *Player) {
	winners := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID != loser.ID {
			winners = append(winners, p.Name)
		}
	}
	for _, p := range r.Players {
		msg := RoundOverMsg{
			Type:      "round_over",
			LoserID:   loser.ID,
			LoserName: loser.Name,
			Winners:   winners,
			YouLost:   p.ID == loser.ID,
		}
		r.send(p, msg)
	}
}
