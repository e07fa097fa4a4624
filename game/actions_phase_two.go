package game

import "time"

// Battle phase: seats take turns beating the pile's top card. A full pile
// (one card per active seat) is exposed for a fixed interval, then discarded;
// the discard is where winners and the round's loser are derived.

// startPhaseTwo opens the battle. The seat that drew the last deck card
// leads; if it already left, the current seat keeps the lead.
func (r *Room) startPhaseTwo() {
	r.Phase = PhaseTwo
	r.BattlePile = nil
	r.lastPilePlayerID = ""
	for i, p := range r.Players {
		if p.ID == r.firstBattleSeat {
			r.CurrentPlayerIndex = i
			break
		}
	}
	r.notifyAll("Battle begins. Trump is " + string(r.TrumpSuit) + ".")
	r.broadcastState()
}

func (r *Room) handlePlayCard(p *Player, card Card) {
	if p.IsOut {
		r.sendError(p, "You are out of this round.")
		return
	}
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	if topCard, ok := top(r.BattlePile); ok && !CanBeat(card, topCard, r.TrumpSuit) {
		r.sendError(p, "That card does not beat the pile.")
		return
	}
	hand, held := removeCard(p.Hand, card)
	if !held {
		r.sendError(p, "You do not hold that card.")
		return
	}
	p.Hand = hand
	r.BattlePile = append(r.BattlePile, card)
	r.lastPilePlayerID = p.ID

	if len(r.BattlePile) >= r.activeCount() {
		r.beginPileReveal()
		return
	}

	r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
	r.evaluateHands(false)
	if r.Phase == PhaseTwo {
		if r.currentPlayer().IsOut {
			r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
		}
		r.broadcastState()
	}
}

// handleTakePile lets the current seat take the whole pile into hand instead
// of beating it. No discard happens, so no loser evaluation either.
func (r *Room) handleTakePile(p *Player) {
	if p.IsOut {
		r.sendError(p, "You are out of this round.")
		return
	}
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	if len(r.BattlePile) == 0 {
		r.sendError(p, "The pile is empty.")
		return
	}
	p.Hand = append(p.Hand, r.BattlePile...)
	r.BattlePile = nil
	r.lastPilePlayerID = ""
	r.notifyAll(p.Name + " took the pile.")

	r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
	r.evaluateHands(false)
	if r.Phase == PhaseTwo {
		if r.currentPlayer().IsOut {
			r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
		}
		r.broadcastState()
	}
}

// beginPileReveal exposes the completed pile to everyone for the configured
// interval, then feeds the discard back through the action channel so it is
// applied serially. Commands arriving in between are queued by the run loop.
func (r *Room) beginPileReveal() {
	r.RevealInProgress = true
	r.revealSeq++
	r.broadcastState()

	seq := r.revealSeq
	delay := time.Duration(r.Config.PileRevealMS) * time.Millisecond
	go func() {
		time.Sleep(delay)
		select {
		case r.Actions <- Action{Type: ActionResolvePile, revealSeq: seq}:
		case <-r.Done:
		}
	}()
}

// handleResolvePile moves the exposed pile to the discard pile and runs the
// loser derivation. A stale sequence means the round was reset mid-reveal.
func (r *Room) handleResolvePile(seq int) {
	if !r.RevealInProgress || seq != r.revealSeq {
		return
	}
	r.RevealInProgress = false
	triggerID := r.lastPilePlayerID
	r.DiscardPile = append(r.DiscardPile, r.BattlePile...)
	r.BattlePile = nil
	r.lastPilePlayerID = ""

	if !r.verifyConservation() {
		r.broadcastState()
		return
	}

	r.evaluateHands(true)
	if r.Phase != PhaseTwo {
		return
	}
	if r.deriveLoser(triggerID) {
		return
	}

	// The seat that closed the pile leads the next one.
	for i, p := range r.Players {
		if p.ID == triggerID && !p.IsOut {
			r.CurrentPlayerIndex = i
		}
	}
	if r.currentPlayer().IsOut {
		r.CurrentPlayerIndex = r.nextActiveFrom(r.CurrentPlayerIndex)
	}
	r.broadcastState()
}

// evaluateHands gives every empty-handed active seat its hidden reserve, or
// marks it as finished once the reserve is spent. Off a discard event only a
// single seat can finish; simultaneous finishes are resolved by deriveLoser.
func (r *Room) evaluateHands(afterDiscard bool) {
	for _, p := range r.Players {
		if p.IsOut || len(p.Hand) > 0 {
			continue
		}
		if !p.PickedReserve && len(p.HiddenReserve) > 0 {
			p.Hand = p.HiddenReserve
			p.HiddenReserve = nil
			p.PickedReserve = true
			r.notify(p, "You picked up your hidden reserve.")
			continue
		}
		if p.holdsNothing() && !afterDiscard {
			p.IsOut = true
			r.notifyAll(p.Name + " is out of cards and wins.")
		}
	}
	if !afterDiscard && r.activeCount() == 1 {
		for _, p := range r.Players {
			if !p.IsOut {
				r.endRound(p)
				return
			}
		}
	}
}

// deriveLoser applies the end-of-round rules after a discard. Returns true
// when the round ended.
func (r *Room) deriveLoser(triggerID string) bool {
	var finished, holding []*Player
	for _, p := range r.Players {
		if p.IsOut {
			continue
		}
		if p.holdsNothing() {
			finished = append(finished, p)
		} else {
			holding = append(holding, p)
		}
	}

	switch {
	case len(holding)+len(finished) == 1:
		// Everyone else already left the round; the lone seat loses.
		loser := holding
		if len(loser) == 0 {
			loser = finished
		}
		r.endRound(loser[0])
		return true
	case len(holding) == 1 && len(finished) >= 1:
		r.endRound(holding[0])
		return true
	case len(holding) == 0 && len(finished) >= 2:
		// True simultaneous finish: the seat that closed the pile was the
		// last to empty and takes the loss.
		if loser := r.playerByID(triggerID); loser != nil {
			r.endRound(loser)
			return true
		}
		r.endRound(finished[len(finished)-1])
		return true
	}

	// Seats that finished while others still hold cards leave as winners.
	for _, p := range finished {
		p.IsOut = true
		r.notifyAll(p.Name + " is out of cards and wins.")
	}
	return false
}
