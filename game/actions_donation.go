package game

import "sort"

// Donation settles the phase-one penalty log before battle. Consecutive
// same-recipient penalties collapse into one aggregated obligation; every
// other seat owes the recipient that many cards, and the obligations are
// worked off strictly in order.

// startDonation aggregates the penalty log and opens the first obligation.
func (r *Room) startDonation() {
	r.Phase = Donation
	r.DonationEntries = nil
	r.DonationIndex = 0

	for _, pen := range r.PenaltyLog {
		n := len(r.DonationEntries)
		if n > 0 && r.DonationEntries[n-1].RecipientID == pen.PlayerID {
			r.DonationEntries[n-1].Count++
			continue
		}
		r.DonationEntries = append(r.DonationEntries, &DonationEntry{
			RecipientID: pen.PlayerID,
			Count:       1,
			Given:       make(map[string]int),
		})
	}

	r.notifyAll("Penalties must be settled before battle.")
	r.openCurrentEntry()
}

// openCurrentEntry positions the donor turn for the current obligation,
// skipping entries that are already satisfied (recipient gone, or no donor
// has cards). Moves on to the battle phase when nothing is left to settle.
func (r *Room) openCurrentEntry() {
	for r.DonationIndex < len(r.DonationEntries) {
		entry := r.DonationEntries[r.DonationIndex]
		recipient := r.playerByID(entry.RecipientID)
		if recipient != nil {
			for _, p := range r.Players {
				p.HasDonated = !r.donorEligible(p, entry)
			}
			if idx, ok := r.firstEligibleDonor(entry); ok {
				r.CurrentPlayerIndex = idx
				r.broadcastState()
				return
			}
		}
		r.DonationIndex++
	}

	r.PenaltyLog = nil
	r.startPhaseTwo()
}

// donorEligible reports whether p still owes cards on entry and can pay.
func (r *Room) donorEligible(p *Player, entry *DonationEntry) bool {
	if p.ID == entry.RecipientID {
		return false
	}
	if len(p.Hand) == 0 {
		return false
	}
	return entry.Given[p.ID] < entry.Count
}

// firstEligibleDonor finds the next donor in seating order, starting at the
// seat after the recipient.
func (r *Room) firstEligibleDonor(entry *DonationEntry) (int, bool) {
	start := 0
	for i, p := range r.Players {
		if p.ID == entry.RecipientID {
			start = i
			break
		}
	}
	for step := 1; step <= len(r.Players); step++ {
		idx := (start + step) % len(r.Players)
		if r.donorEligible(r.Players[idx], entry) {
			return idx, true
		}
	}
	return 0, false
}

// nextDonorAfter rotates the donor turn from the given seat.
func (r *Room) nextDonorAfter(idx int, entry *DonationEntry) (int, bool) {
	for step := 1; step <= len(r.Players); step++ {
		candidate := (idx + step) % len(r.Players)
		if r.donorEligible(r.Players[candidate], entry) {
			return candidate, true
		}
	}
	return 0, false
}

func (r *Room) handleDonateCards(p *Player, donations map[string][]int) {
	if !r.isTurn(p) {
		r.sendError(p, "It is not your donation turn.")
		return
	}
	if r.DonationIndex >= len(r.DonationEntries) {
		return
	}
	entry := r.DonationEntries[r.DonationIndex]
	recipient := r.playerByID(entry.RecipientID)
	if recipient == nil {
		r.DonationIndex++
		r.openCurrentEntry()
		return
	}

	indices := donations[entry.RecipientID]
	if len(indices) == 0 {
		r.sendError(p, "Choose at least one card for "+recipient.Name+".")
		return
	}
	remaining := entry.Count - entry.Given[p.ID]
	if len(indices) > remaining {
		indices = indices[:remaining]
	}

	// Validate and transfer by descending hand index so removals don't
	// shift the remaining picks.
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for i, idx := range sorted {
		if idx < 0 || idx >= len(p.Hand) || (i > 0 && idx == sorted[i-1]) {
			r.sendError(p, "Invalid card selection.")
			return
		}
	}
	for _, idx := range sorted {
		card := p.Hand[idx]
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		recipient.Hand = append(recipient.Hand, card)
	}
	entry.Given[p.ID] += len(sorted)
	r.notify(recipient, p.Name+" donated cards to you.")

	if !r.donorEligible(p, entry) {
		p.HasDonated = true
	}

	donorIdx := r.CurrentPlayerIndex
	if next, ok := r.nextDonorAfter(donorIdx, entry); ok {
		r.CurrentPlayerIndex = next
		r.broadcastState()
		return
	}

	// Every donor with cards has met the obligation.
	r.DonationIndex++
	r.openCurrentEntry()
}
