package game

// Phase one: seats take turns drawing one card from the deck and placing it
// on a visible stack under the seniority rule. Infractions are not rejected,
// they are recorded in the penalty log and settled later by donation.

// Penalty reasons recorded during phase one.
const (
	ReasonMissedGive        = "missed give"
	ReasonMissedGiveOwnPile = "missed give, own pile"
	ReasonIllegalPlacement  = "illegal placement"
	ReasonIllegalGive       = "illegal give from stack"
	ReasonSixOnAce          = "received 6 on ace"
)

func (r *Room) handleDrawCard(p *Player) {
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	if len(r.Deck) == 0 {
		r.sendError(p, "The deck is empty.")
		return
	}
	if len(p.Hand) > 0 {
		r.sendError(p, "You already hold a card; place it first.")
		return
	}

	// Before the draw: a seat sitting on a giveable stack top should have
	// given it away. The top is giveable when it does not itself continue
	// the seat's own stack but fits on someone else's.
	if len(p.VisibleStack) >= 2 {
		topCard := p.VisibleStack[len(p.VisibleStack)-1]
		beneath := p.VisibleStack[:len(p.VisibleStack)-1]
		if !CanStack(topCard, beneath) && r.canGiveAnywhere(p, topCard) {
			r.logPenalty(p, ReasonMissedGive)
		}
	}

	drawn := r.popDeck()
	p.Hand = append(p.Hand, drawn)
	r.DrawnOrder = append(r.DrawnOrder, drawn)

	if len(r.Deck) == 0 {
		r.TrumpSuit = TrumpFromDraws(r.DrawnOrder)
		r.firstBattleSeat = p.ID
		r.notifyAll("The deck is exhausted. Trump is " + string(r.TrumpSuit) + ".")
	}
	r.broadcastState()
}

// canGiveAnywhere reports whether card fits on any other seat's stack.
func (r *Room) canGiveAnywhere(p *Player, card Card) bool {
	for _, other := range r.Players {
		if other.ID != p.ID && CanStack(card, other.VisibleStack) {
			return true
		}
	}
	return false
}

func (r *Room) handlePlaceCard(p *Player, card Card, targetID string) {
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	target := r.playerByID(targetID)
	if target == nil {
		r.sendError(p, "Unknown target seat.")
		return
	}
	hand, held := removeCard(p.Hand, card)
	if !held {
		r.sendError(p, "You do not hold that card.")
		return
	}
	p.Hand = hand

	if target.ID == p.ID {
		r.placeOnOwnStack(p, card)
		return
	}

	if !CanStack(card, target.VisibleStack) {
		// The mis-play sticks: the card lands anyway, the placer is
		// penalized and the turn is over.
		r.logPenalty(p, ReasonIllegalPlacement)
		target.VisibleStack = append(target.VisibleStack, card)
		r.endTurn(p)
		return
	}
	if IsSixOnAce(card, target.VisibleStack) {
		r.logPenalty(target, ReasonSixOnAce)
	}
	target.VisibleStack = append(target.VisibleStack, card)
	// A legal placement on another seat keeps the turn.
	r.broadcastState()
}

// placeOnOwnStack appends the card to the acting seat's own stack and ends
// the turn. Keeping a card that fit elsewhere is a penalty.
func (r *Room) placeOnOwnStack(p *Player, card Card) {
	if CanStack(card, p.VisibleStack) {
		if IsSixOnAce(card, p.VisibleStack) {
			r.logPenalty(p, ReasonSixOnAce)
		}
	} else if r.canGiveAnywhere(p, card) {
		r.logPenalty(p, ReasonMissedGiveOwnPile)
	}
	p.VisibleStack = append(p.VisibleStack, card)
	r.endTurn(p)
}

func (r *Room) handleGiveFromStack(p *Player, targetID string) {
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	if len(p.VisibleStack) < 2 {
		r.sendError(p, "Only the base card is left; nothing to give.")
		return
	}
	target := r.playerByID(targetID)
	if target == nil || target.ID == p.ID {
		r.sendError(p, "Unknown target seat.")
		return
	}

	topCard := p.VisibleStack[len(p.VisibleStack)-1]
	if !CanStack(topCard, target.VisibleStack) {
		// Unlike hand placement, an illegal give does not move the card.
		r.logPenalty(p, ReasonIllegalGive)
		r.endTurn(p)
		return
	}
	if IsSixOnAce(topCard, target.VisibleStack) {
		r.logPenalty(target, ReasonSixOnAce)
	}
	p.VisibleStack = p.VisibleStack[:len(p.VisibleStack)-1]
	target.VisibleStack = append(target.VisibleStack, topCard)
	r.notify(target, p.Name+" gave you a card from their stack.")
	// A successful give keeps the turn: give again or draw.
	r.broadcastState()
}

// handleEndTurnCommand hands the turn over explicitly. Only meaningful when
// the seat can neither draw (deck empty) nor place (hand empty).
func (r *Room) handleEndTurnCommand(p *Player) {
	if !r.isTurn(p) {
		r.sendError(p, "It is not your turn.")
		return
	}
	if len(p.Hand) > 0 || len(r.Deck) > 0 {
		r.sendError(p, "You still have a card to draw or place.")
		return
	}
	r.endTurn(p)
}

// endTurn flushes any held cards onto the seat's own stack, advances the
// turn, and leaves phase one if the deck has run out.
func (r *Room) endTurn(p *Player) {
	for len(p.Hand) > 0 {
		card := p.Hand[len(p.Hand)-1]
		p.Hand = p.Hand[:len(p.Hand)-1]
		p.VisibleStack = append(p.VisibleStack, card)
	}
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)

	if len(r.Deck) == 0 {
		r.finishPhaseOne()
		return
	}
	r.broadcastState()
}

// finishPhaseOne moves every stack into its owner's hand (the pool the rest
// of the round is played from) and routes to donation or straight to battle.
func (r *Room) finishPhaseOne() {
	for _, p := range r.Players {
		p.Hand = append(p.Hand, p.VisibleStack...)
		p.VisibleStack = nil
	}
	if len(r.PenaltyLog) > 0 {
		r.startDonation()
		return
	}
	r.startPhaseTwo()
}
