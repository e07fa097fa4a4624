package game

import "testing"

// donationRoom builds a room mid-donation: every seat holds the given number
// of cards and the penalty log is already aggregated via startDonation.
func donationRoom(n, handSize int, log []Penalty) *Room {
	r := newTestRoom(n)
	r.Phase = PhaseOne
	deck := orderedDeck()
	next := 0
	for _, p := range r.Players {
		p.Hand = append([]Card(nil), deck[next:next+handSize]...)
		next += handSize
	}
	r.DiscardPile = append([]Card(nil), deck[next:]...)
	r.PenaltyLog = log
	r.TrumpSuit = Hearts
	r.firstBattleSeat = "p1"
	r.startDonation()
	return r
}

func TestDonationAggregatesConsecutiveRuns(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{
		{PlayerID: "p1", Reason: ReasonSixOnAce},
		{PlayerID: "p1", Reason: ReasonIllegalPlacement},
		{PlayerID: "p2", Reason: ReasonMissedGive},
		{PlayerID: "p1", Reason: ReasonSixOnAce},
	})

	if len(r.DonationEntries) != 3 {
		t.Fatalf("entries = %d, want 3 (runs are aggregated, not recipients)", len(r.DonationEntries))
	}
	want := []struct {
		recipient string
		count     int
	}{{"p1", 2}, {"p2", 1}, {"p1", 1}}
	for i, w := range want {
		e := r.DonationEntries[i]
		if e.RecipientID != w.recipient || e.Count != w.count {
			t.Errorf("entry %d = {%s %d}, want {%s %d}", i, e.RecipientID, e.Count, w.recipient, w.count)
		}
	}
}

func TestDonationStartsAtSeatAfterRecipient(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p2", Reason: ReasonSixOnAce}})
	if r.Phase != Donation {
		t.Fatalf("phase = %s, want donation", r.Phase)
	}
	// The recipient sits at index 1; the first donor is index 2.
	if r.CurrentPlayerIndex != 2 {
		t.Errorf("first donor = seat %d, want 2", r.CurrentPlayerIndex)
	}
	if !r.Players[1].HasDonated {
		t.Error("the recipient owes nothing and should be marked done")
	}
}

func TestDonateTransfersCardsAndRotates(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})
	donor := r.currentPlayer()
	if donor.ID != "p2" {
		t.Fatalf("first donor = %s, want p2", donor.ID)
	}
	given := donor.Hand[0]

	r.handleDonateCards(donor, map[string][]int{"p1": {0}})
	if len(donor.Hand) != 3 {
		t.Errorf("donor hand = %d cards, want 3", len(donor.Hand))
	}
	if len(r.Players[0].Hand) != 5 {
		t.Errorf("recipient hand = %d cards, want 5", len(r.Players[0].Hand))
	}
	found := false
	for _, c := range r.Players[0].Hand {
		if c == given {
			found = true
		}
	}
	if !found {
		t.Error("the donated card did not reach the recipient")
	}
	if r.currentPlayer().ID != "p3" {
		t.Errorf("next donor = %s, want p3", r.currentPlayer().ID)
	}
}

func TestDonationCompletionOpensBattle(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})

	r.handleDonateCards(r.currentPlayer(), map[string][]int{"p1": {0}})
	r.handleDonateCards(r.currentPlayer(), map[string][]int{"p1": {0}})

	if r.Phase != PhaseTwo {
		t.Fatalf("phase = %s, want phase_two once every donor paid", r.Phase)
	}
	if r.PenaltyLog != nil {
		t.Error("the penalty log must be cleared after settlement")
	}
	if len(r.Players[0].Hand) != 6 {
		t.Errorf("recipient hand = %d cards, want 6", len(r.Players[0].Hand))
	}
	if !r.verifyConservation() {
		t.Error("donation broke card conservation")
	}
}

func TestDonationSkipsEmptyHandedDonor(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})
	// Empty p2's hand into the discard pile; p3 becomes the only donor.
	p2 := r.Players[1]
	r.DiscardPile = append(r.DiscardPile, p2.Hand...)
	p2.Hand = nil
	r.openCurrentEntry()

	if r.currentPlayer().ID != "p3" {
		t.Fatalf("donor = %s, want p3 when p2 cannot pay", r.currentPlayer().ID)
	}
	r.handleDonateCards(r.Players[2], map[string][]int{"p1": {0}})
	if r.Phase != PhaseTwo {
		t.Errorf("phase = %s, want phase_two once the only able donor paid", r.Phase)
	}
}

func TestDonateOutOfTurnRejected(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})
	other := r.Players[2]
	if r.currentPlayer().ID == other.ID {
		t.Fatal("test setup: p3 should not be the first donor")
	}
	r.handleDonateCards(other, map[string][]int{"p1": {0}})
	if len(other.Hand) != 4 {
		t.Error("out-of-turn donation moved cards")
	}
}

func TestDonateInvalidIndicesRejected(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})
	donor := r.currentPlayer()
	r.handleDonateCards(donor, map[string][]int{"p1": {9}})
	if len(donor.Hand) != 4 {
		t.Error("an out-of-range index must not move cards")
	}
	r.handleDonateCards(donor, map[string][]int{"p1": nil})
	if len(donor.Hand) != 4 {
		t.Error("an empty selection must not move cards")
	}
}

func TestDonateCapsAtRemainingObligation(t *testing.T) {
	r := donationRoom(3, 4, []Penalty{{PlayerID: "p1", Reason: ReasonSixOnAce}})
	donor := r.currentPlayer()
	r.handleDonateCards(donor, map[string][]int{"p1": {0, 1, 2}})
	if len(donor.Hand) != 3 {
		t.Errorf("donor hand = %d cards, want 3 (obligation is one card)", len(donor.Hand))
	}
}

func TestMultiCardObligation(t *testing.T) {
	r := donationRoom(2, 5, []Penalty{
		{PlayerID: "p1", Reason: ReasonSixOnAce},
		{PlayerID: "p1", Reason: ReasonSixOnAce},
	})
	donor := r.Players[1]
	r.handleDonateCards(donor, map[string][]int{"p1": {0}})
	if r.Phase != Donation {
		t.Fatal("a partial payment must not close the entry")
	}
	if r.currentPlayer().ID != donor.ID {
		t.Fatal("with a single donor the turn stays until the obligation is met")
	}
	r.handleDonateCards(donor, map[string][]int{"p1": {0}})
	if r.Phase != PhaseTwo {
		t.Fatalf("phase = %s, want phase_two after two cards", r.Phase)
	}
	if len(r.Players[0].Hand) != 7 || len(donor.Hand) != 3 {
		t.Errorf("hands = %d/%d, want 7/3", len(r.Players[0].Hand), len(donor.Hand))
	}
}
