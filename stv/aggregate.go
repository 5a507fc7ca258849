package stv

// CandidateAggregates is the immutable per-round snapshot of spec.md 3:
// once built and appended to a History, it is never mutated again. It is
// the only acceptable source for the tie-breaker historical comparisons
// in election.go and exclusion.go.
type CandidateAggregates struct {
	RoundNumber     int
	Votes           map[CandidateID]int64
	Papers          map[CandidateID]int64
	ExhaustedVotes  int64
	ExhaustedPapers int64
	GainLossVotes   int64
	GainLossPapers  int64
}

// newCandidateAggregates builds the round's snapshot from the current
// ledger paper counts, the round's computed vote totals, and the running
// exhausted totals. totalPapers is the count's fixed total, used to
// derive the gain/loss figures (spec.md 3).
func newCandidateAggregates(roundNumber int, totalPapers int64, votes, papers map[CandidateID]int64, exhaustedVotes, exhaustedPapers int64) *CandidateAggregates {
	var sumVotes, sumPapers int64
	for _, v := range votes {
		sumVotes += v
	}
	for _, p := range papers {
		sumPapers += p
	}
	return &CandidateAggregates{
		RoundNumber:     roundNumber,
		Votes:           votes,
		Papers:          papers,
		ExhaustedVotes:  exhaustedVotes,
		ExhaustedPapers: exhaustedPapers,
		GainLossVotes:   totalPapers - sumVotes - exhaustedVotes,
		GainLossPapers:  totalPapers - sumPapers - exhaustedPapers,
	}
}

// VoteCount returns cid's vote total in this round.
func (a *CandidateAggregates) VoteCount(cid CandidateID) int64 { return a.Votes[cid] }

// PaperCount returns cid's paper count in this round.
func (a *CandidateAggregates) PaperCount(cid CandidateID) int64 { return a.Papers[cid] }

// History is the append-only, round-indexed sequence of aggregate
// snapshots accumulated over a count. It backs the "most recent round in
// which all tied candidates had pairwise distinct vote counts" lookback
// used by election order (spec.md 4.6) and exclusion (spec.md 4.7).
type History struct {
	rounds []*CandidateAggregates
}

// Append records the next round's snapshot.
func (h *History) Append(a *CandidateAggregates) { h.rounds = append(h.rounds, a) }

// Latest returns the most recently appended snapshot, or nil if none
// have been recorded yet.
func (h *History) Latest() *CandidateAggregates {
	if len(h.rounds) == 0 {
		return nil
	}
	return h.rounds[len(h.rounds)-1]
}

// All returns every recorded snapshot in round order.
func (h *History) All() []*CandidateAggregates {
	out := make([]*CandidateAggregates, len(h.rounds))
	copy(out, h.rounds)
	return out
}

// FindTieBreaker searches rounds from most recent to least recent for
// one in which every candidate in ids held a pairwise distinct vote
// count, returning that round's snapshot. Returns nil if no such round
// exists (spec.md 4.6, 4.7).
func (h *History) FindTieBreaker(ids []CandidateID) *CandidateAggregates {
	for i := len(h.rounds) - 1; i >= 0; i-- {
		snapshot := h.rounds[i]
		seen := make(map[int64]int, len(ids))
		for _, cid := range ids {
			seen[snapshot.VoteCount(cid)]++
		}
		distinct := true
		for _, count := range seen {
			if count > 1 {
				distinct = false
				break
			}
		}
		if distinct {
			return snapshot
		}
	}
	return nil
}
