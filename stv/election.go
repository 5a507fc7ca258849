package stv

import (
	"sort"

	"github.com/pkg/errors"
)

// ElectionOrderCallback resolves a tie among candidates reaching quota in
// the same round when no round in history distinguishes them (spec.md
// 4.6, 6: election_order_cb). It is offered every permutation of the
// tied candidates in lexicographic order and returns the chosen index.
type ElectionOrderCallback func(permutations [][]CandidateID) (int, error)

// ElectionQueueItem is one pending entry on the election distribution
// queue (spec.md 3).
type ElectionQueueItem struct {
	CandidateID   CandidateID
	TransferValue Value
	ExcessVotes   int64
}

// Elect computes the scheduled transfer for a candidate reaching quota
// (spec.md 4.6). finalSeat is true when this election fills the last
// remaining vacancy, in which case no transfer is scheduled and Elect
// returns nil.
func Elect(cid CandidateID, votes, quota, paperCount int64, finalSeat bool) *ElectionQueueItem {
	if finalSeat {
		return nil
	}
	excess := votes - quota
	if excess < 0 {
		excess = 0
	}
	tv := Zero()
	if paperCount > 0 {
		tv = NewRatio(excess, paperCount)
	}
	return &ElectionQueueItem{CandidateID: cid, TransferValue: tv, ExcessVotes: excess}
}

// ResolveElectionOrder orders the candidates who reached quota in a
// single round, highest vote count first. Within a group tied at the
// same vote count, it first consults history for the most recent round
// in which the tied candidates held pairwise distinct vote counts,
// ordering by that round's counts; failing that, it offers every
// permutation of the group, in lexicographic order by order, to cb and
// adopts its choice (spec.md 4.6).
func ResolveElectionOrder(meetingQuota []CandidateID, votes map[CandidateID]int64, history *History, order Ordering, cb ElectionOrderCallback) ([]CandidateID, error) {
	groups := groupByVotesDescending(meetingQuota, votes)

	result := make([]CandidateID, 0, len(meetingQuota))
	for _, group := range groups {
		if len(group) == 1 {
			result = append(result, group[0])
			continue
		}
		resolved, err := resolveTiedGroup(group, history, order, cb)
		if err != nil {
			return nil, err
		}
		result = append(result, resolved...)
	}
	return result, nil
}

func resolveTiedGroup(group []CandidateID, history *History, order Ordering, cb ElectionOrderCallback) ([]CandidateID, error) {
	if snapshot := history.FindTieBreaker(group); snapshot != nil {
		ordered := append([]CandidateID(nil), group...)
		sort.Slice(ordered, func(i, j int) bool {
			return snapshot.VoteCount(ordered[i]) > snapshot.VoteCount(ordered[j])
		})
		return ordered, nil
	}

	base := append([]CandidateID(nil), group...)
	sort.Slice(base, func(i, j int) bool { return order(base[i]) < order(base[j]) })
	permutations := lexicographicPermutations(base)

	index, err := cb(permutations)
	if err != nil {
		return nil, errors.Wrap(ErrCallbackFailure, err.Error())
	}
	if index < 0 || index >= len(permutations) {
		return nil, errors.Wrapf(ErrCallbackFailure, "election order callback returned out-of-range index %d", index)
	}
	return permutations[index], nil
}

// groupByVotesDescending partitions ids into runs of equal vote count,
// the runs themselves ordered by decreasing vote count.
func groupByVotesDescending(ids []CandidateID, votes map[CandidateID]int64) [][]CandidateID {
	sorted := append([]CandidateID(nil), ids...)
	sort.SliceStable(sorted, func(i, j int) bool { return votes[sorted[i]] > votes[sorted[j]] })

	var groups [][]CandidateID
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && votes[sorted[j]] == votes[sorted[i]] {
			j++
		}
		groups = append(groups, sorted[i:j])
		i = j
	}
	return groups
}

// lexicographicPermutations returns every permutation of a sequence
// already sorted into its base order, in lexicographic order over that
// base order (Narayana Pandita's algorithm, aka std::next_permutation).
func lexicographicPermutations(base []CandidateID) [][]CandidateID {
	n := len(base)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	toPermutation := func(idx []int) []CandidateID {
		out := make([]CandidateID, n)
		for i, pos := range idx {
			out[i] = base[pos]
		}
		return out
	}

	result := [][]CandidateID{toPermutation(indices)}
	for {
		i := n - 2
		for i >= 0 && indices[i] >= indices[i+1] {
			i--
		}
		if i < 0 {
			break
		}
		j := n - 1
		for indices[j] <= indices[i] {
			j--
		}
		indices[i], indices[j] = indices[j], indices[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			indices[l], indices[r] = indices[r], indices[l]
		}
		result = append(result, toPermutation(indices))
	}
	return result
}
