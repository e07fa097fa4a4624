package game

import "math/rand"

// Suit is one of the four card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists all suits in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank bounds for the 36-card deck: 6..10, J=11, Q=12, K=13, A=14.
const (
	MinRank = 6
	Jack    = 11
	Queen   = 12
	King    = 13
	Ace     = 14
	MaxRank = Ace
)

// Card is an immutable card value. Two cards are equal iff suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// DeckSize is the number of distinct cards in play.
const DeckSize = 36

// NewDeck builds the 36-card deck (one of each suit/rank pair) and shuffles it.
// Cards are dealt and drawn by popping from the tail.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// SevenOfSpades is the top beater in the battle phase.
var SevenOfSpades = Card{Suit: Spades, Rank: 7}

// top returns the last card of a pile and whether the pile is non-empty.
func top(pile []Card) (Card, bool) {
	if len(pile) == 0 {
		return Card{}, false
	}
	return pile[len(pile)-1], true
}

// removeCard removes the first occurrence of c from cards.
// Returns the shrunk slice and whether c was found.
func removeCard(cards []Card, c Card) ([]Card, bool) {
	for i, have := range cards {
		if have == c {
			return append(cards[:i], cards[i+1:]...), true
		}
	}
	return cards, false
}
