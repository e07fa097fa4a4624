package game

import "testing"

func allCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return cards
}

func TestCanStackEmptyStackTakesAnything(t *testing.T) {
	for _, c := range allCards() {
		if !CanStack(c, nil) {
			t.Errorf("empty stack should accept %v", c)
		}
	}
}

func TestCanStackExhaustive(t *testing.T) {
	for _, topCard := range allCards() {
		for _, c := range allCards() {
			want := c.Rank == topCard.Rank+1 || (c.Rank == MinRank && topCard.Rank == Ace)
			got := CanStack(c, []Card{topCard})
			if got != want {
				t.Errorf("CanStack(%v on %v) = %v, want %v", c, topCard, got, want)
			}
		}
	}
}

func TestCanStackIgnoresSuit(t *testing.T) {
	stack := []Card{{Suit: Hearts, Rank: 9}}
	for _, suit := range Suits {
		if !CanStack(Card{Suit: suit, Rank: 10}, stack) {
			t.Errorf("a 10 of %s should stack on a 9", suit)
		}
	}
}

func TestIsSixOnAce(t *testing.T) {
	ace := []Card{{Suit: Clubs, Rank: Ace}}
	if !IsSixOnAce(Card{Suit: Hearts, Rank: 6}, ace) {
		t.Error("6 on ace not detected")
	}
	if IsSixOnAce(Card{Suit: Hearts, Rank: 7}, ace) {
		t.Error("7 on ace is not the six-on-ace play")
	}
	if IsSixOnAce(Card{Suit: Hearts, Rank: 6}, []Card{{Suit: Clubs, Rank: King}}) {
		t.Error("6 on king is not the six-on-ace play")
	}
	if IsSixOnAce(Card{Suit: Hearts, Rank: 6}, nil) {
		t.Error("6 on an empty stack is not the six-on-ace play")
	}
}

func TestCanBeatSevenOfSpadesBeatsEverything(t *testing.T) {
	for _, topCard := range allCards() {
		if topCard == SevenOfSpades {
			continue
		}
		if !CanBeat(SevenOfSpades, topCard, Hearts) {
			t.Errorf("seven of spades should beat %v", topCard)
		}
	}
}

func TestCanBeatSevenOfSpadesOnTop(t *testing.T) {
	for _, c := range allCards() {
		if c == SevenOfSpades {
			continue
		}
		want := c.Suit == Spades
		if got := CanBeat(c, SevenOfSpades, Hearts); got != want {
			t.Errorf("CanBeat(%v vs seven of spades) = %v, want %v", c, got, want)
		}
	}
}

func TestCanBeatSameSuit(t *testing.T) {
	if !CanBeat(Card{Suit: Hearts, Rank: 10}, Card{Suit: Hearts, Rank: 9}, Clubs) {
		t.Error("higher same-suit card should win")
	}
	if CanBeat(Card{Suit: Hearts, Rank: 9}, Card{Suit: Hearts, Rank: 10}, Clubs) {
		t.Error("lower same-suit card should lose")
	}
	if !CanBeat(Card{Suit: Hearts, Rank: 6}, Card{Suit: Hearts, Rank: Ace}, Clubs) {
		t.Error("a 6 should beat an ace of the same suit")
	}
	if CanBeat(Card{Suit: Hearts, Rank: 6}, Card{Suit: Hearts, Rank: King}, Clubs) {
		t.Error("a 6 should not beat a king")
	}
}

func TestCanBeatSpadeTopBlocksNonSpades(t *testing.T) {
	topCard := Card{Suit: Spades, Rank: 8}
	// Even the trump suit cannot cross a spade.
	if CanBeat(Card{Suit: Hearts, Rank: Ace}, topCard, Hearts) {
		t.Error("trump should not beat a spade of another suit")
	}
	if !CanBeat(Card{Suit: Spades, Rank: 9}, topCard, Hearts) {
		t.Error("a higher spade should beat a spade")
	}
}

func TestCanBeatTrumpCrossSuit(t *testing.T) {
	topCard := Card{Suit: Clubs, Rank: Ace}
	if !CanBeat(Card{Suit: Hearts, Rank: 6}, topCard, Hearts) {
		t.Error("any trump should beat a non-trump of another suit")
	}
	if CanBeat(Card{Suit: Diamonds, Rank: Ace}, topCard, Hearts) {
		t.Error("a non-trump off-suit card should lose")
	}
}

// TestCanBeatExhaustive walks every (played, top, trump) triple and checks
// the result against the rule order spelled out independently.
func TestCanBeatExhaustive(t *testing.T) {
	expect := func(played, topCard Card, trump Suit) bool {
		switch {
		case played == SevenOfSpades:
			return true
		case topCard == SevenOfSpades:
			return played.Suit == Spades
		case played.Suit == topCard.Suit:
			return played.Rank > topCard.Rank || (played.Rank == MinRank && topCard.Rank == Ace)
		case topCard.Suit == Spades:
			return false
		default:
			return played.Suit == trump && topCard.Suit != trump
		}
	}
	for _, trump := range Suits {
		for _, topCard := range allCards() {
			for _, played := range allCards() {
				want := expect(played, topCard, trump)
				if got := CanBeat(played, topCard, trump); got != want {
					t.Fatalf("CanBeat(%v vs %v, trump %s) = %v, want %v", played, topCard, trump, got, want)
				}
			}
		}
	}
}

func TestTrumpFromDraws(t *testing.T) {
	drawn := []Card{
		{Suit: Hearts, Rank: 6},
		{Suit: Clubs, Rank: 9},
		{Suit: Spades, Rank: Ace},
		{Suit: Spades, Rank: King},
	}
	if got := TrumpFromDraws(drawn); got != Clubs {
		t.Errorf("trump = %s, want clubs (most recent non-spade)", got)
	}

	allSpades := []Card{
		{Suit: Spades, Rank: 6},
		{Suit: Spades, Rank: 7},
	}
	if got := TrumpFromDraws(allSpades); got != Spades {
		t.Errorf("trump = %s, want spades when only spades were drawn", got)
	}

	if got := TrumpFromDraws(nil); got != Spades {
		t.Errorf("trump = %s, want spades for an empty record", got)
	}
}
