package game

// CanStack reports whether card may be placed on top of stack under the
// seniority rule: an empty stack takes anything, otherwise the card must be
// exactly one rank above the top, with the wraparound exception that a 6 may
// be placed on an Ace.
func CanStack(card Card, stack []Card) bool {
	topCard, ok := top(stack)
	if !ok {
		return true
	}
	if card.Rank == topCard.Rank+1 {
		return true
	}
	return card.Rank == MinRank && topCard.Rank == Ace
}

// IsSixOnAce reports whether placing card on stack is the 6-on-Ace play,
// which penalizes the receiving stack's owner.
func IsSixOnAce(card Card, stack []Card) bool {
	topCard, ok := top(stack)
	return ok && card.Rank == MinRank && topCard.Rank == Ace
}

// CanBeat reports whether played beats topCard in the battle phase.
// The rules apply in order:
//  1. the 7 of spades beats anything;
//  2. the 7 of spades on top is beaten only by another spade;
//  3. same suit: higher rank wins, or 6 beats Ace;
//  4. a spade on top blocks every non-spade;
//  5. trump beats any non-trump;
//  6. everything else loses.
func CanBeat(played, topCard Card, trump Suit) bool {
	if played == SevenOfSpades {
		return true
	}
	if topCard == SevenOfSpades {
		return played.Suit == Spades
	}
	if played.Suit == topCard.Suit {
		if played.Rank > topCard.Rank {
			return true
		}
		return played.Rank == MinRank && topCard.Rank == Ace
	}
	if topCard.Suit == Spades {
		return false
	}
	return played.Suit == trump && topCard.Suit != trump
}

// TrumpFromDraws derives the trump suit from the chronological draw record:
// the suit of the most recently drawn non-spade card, or spades if every
// drawn card was a spade.
func TrumpFromDraws(drawn []Card) Suit {
	for i := len(drawn) - 1; i >= 0; i-- {
		if drawn[i].Suit != Spades {
			return drawn[i].Suit
		}
	}
	return Spades
}
