package stv

import "sort"

// voteTier is a run of continuing candidates sharing the same vote
// total. Notional votes are constant across a tier, since notional(c)
// only depends on votes(c) and the votes of strictly lower candidates.
type voteTier struct {
	votes      int64
	candidates []CandidateID
	notional   int64
}

// BulkExclusionCandidates implements the s.273(13) candidate selection
// of spec.md 4.8. continuing is every candidate neither elected nor
// excluded; pendingElectionExcess is the sum of excess votes on the
// election queue's entries (the "adjustment" spec.md 4.8 applies to the
// notional vote series). It returns the set to bulk-exclude, lowest
// vote total first, or nil if no bulk exclusion applies.
//
// Because every candidate within a tier shares the same vote total by
// construction, "notional(c) strictly less than every candidate in the
// higher tier" is the same comparison as "notional(c) < tier.votes"
// whether that higher tier holds one candidate or many -- so B and C's
// predicates are evaluated against the relevant tier's vote/notional
// value unconditionally. The genuine ambiguity spec.md 4.8 preserves is
// narrower: whether the tier selected AS B or C is itself tied, in
// which case B (or C) is absent.
func BulkExclusionCandidates(continuing []CandidateID, votes map[CandidateID]int64, quota int64, vacanciesRemaining int, pendingElectionExcess int64, order Ordering) []CandidateID {
	if len(continuing) < 2 {
		return nil
	}

	tiers := buildVoteTiers(continuing, votes, pendingElectionExcess, order)

	leadingShortfall := quota - tiers[len(tiers)-1].votes
	vacancyShortfall := smallestShortfallsSum(continuing, votes, quota, vacanciesRemaining)

	aIndex := -1
	for i, t := range tiers {
		if t.notional >= vacancyShortfall {
			aIndex = i
			break
		}
	}

	var bIndex int = -1
	var bTied bool
	if aIndex >= 0 {
		for i := aIndex - 1; i >= 0; i-- {
			higher := tiers[i+1]
			if tiers[i].notional < higher.votes {
				bIndex = i
				bTied = len(tiers[i].candidates) != 1
				break
			}
		}
	} else {
		for i := len(tiers) - 1; i >= 0; i-- {
			if tiers[i].notional < vacancyShortfall {
				bIndex = i
				bTied = len(tiers[i].candidates) != 1
				break
			}
		}
	}

	var b *voteTier
	if bIndex >= 0 && !bTied {
		b = &tiers[bIndex]
	}

	var c *voteTier
	if b != nil && b.votes >= leadingShortfall {
		cIndex := -1
		for i := len(tiers) - 1; i >= 0; i-- {
			if tiers[i].notional < leadingShortfall {
				cIndex = i
				break
			}
		}
		if cIndex >= 0 && len(tiers[cIndex].candidates) == 1 {
			c = &tiers[cIndex]
		}
	}

	excludeBelow := make(map[CandidateID]bool)
	if b != nil && b.votes < leadingShortfall {
		markTierAndBelow(tiers, b.votes, excludeBelow)
	}
	if c != nil {
		markTierAndBelow(tiers, c.votes, excludeBelow)
	}

	if len(excludeBelow) <= 1 {
		return nil
	}

	result := make([]CandidateID, 0, len(excludeBelow))
	for cid := range excludeBelow {
		result = append(result, cid)
	}
	sort.Slice(result, func(i, j int) bool {
		if votes[result[i]] != votes[result[j]] {
			return votes[result[i]] < votes[result[j]]
		}
		return order(result[i]) < order(result[j])
	})
	return result
}

func buildVoteTiers(continuing []CandidateID, votes map[CandidateID]int64, adjustment int64, order Ordering) []voteTier {
	sorted := append([]CandidateID(nil), continuing...)
	sort.Slice(sorted, func(i, j int) bool {
		if votes[sorted[i]] != votes[sorted[j]] {
			return votes[sorted[i]] < votes[sorted[j]]
		}
		return order(sorted[i]) < order(sorted[j])
	})

	var tiers []voteTier
	var runningBelow int64
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && votes[sorted[j]] == votes[sorted[i]] {
			j++
		}
		tier := voteTier{
			votes:      votes[sorted[i]],
			candidates: sorted[i:j],
			notional:   votes[sorted[i]] + runningBelow + adjustment,
		}
		tiers = append(tiers, tier)
		runningBelow += votes[sorted[i]] * int64(j-i)
		i = j
	}
	return tiers
}

func smallestShortfallsSum(continuing []CandidateID, votes map[CandidateID]int64, quota int64, n int) int64 {
	shortfalls := make([]int64, len(continuing))
	for i, cid := range continuing {
		shortfalls[i] = quota - votes[cid]
	}
	sort.Slice(shortfalls, func(i, j int) bool { return shortfalls[i] < shortfalls[j] })
	if n > len(shortfalls) {
		n = len(shortfalls)
	}
	var sum int64
	for i := 0; i < n; i++ {
		sum += shortfalls[i]
	}
	return sum
}

func markTierAndBelow(tiers []voteTier, thresholdVotes int64, out map[CandidateID]bool) {
	for _, t := range tiers {
		if t.votes <= thresholdVotes {
			for _, cid := range t.candidates {
				out[cid] = true
			}
		}
	}
}
