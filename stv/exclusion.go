package stv

import (
	"sort"

	"github.com/pkg/errors"
)

// ExclusionTieCallback resolves a tie among candidates on the lowest
// vote total when history does not distinguish them (spec.md 4.7, 6:
// exclusion_tie_cb). It is offered the tied candidates sorted by order
// and returns the index of the one to exclude.
type ExclusionTieCallback func(candidates []CandidateID) (int, error)

// ExclusionSelection is the result of selecting a single candidate for
// exclusion, along with the bookkeeping spec.md 4.7 requires in the
// exclusion record.
type ExclusionSelection struct {
	Candidate      CandidateID
	MinVotes       int64
	NextToMinVotes *int64
	Margin         *int64
}

// SelectForExclusion finds the continuing candidate with the lowest
// vote total and, if more than one candidate shares it, resolves the
// tie via history or cb (spec.md 4.7).
func SelectForExclusion(continuing []CandidateID, votes map[CandidateID]int64, history *History, order Ordering, cb ExclusionTieCallback) (*ExclusionSelection, error) {
	if len(continuing) == 0 {
		return nil, errors.Wrap(ErrUnreachableState, "no continuing candidates to exclude")
	}

	minVotes := votes[continuing[0]]
	for _, cid := range continuing {
		if v := votes[cid]; v < minVotes {
			minVotes = v
		}
	}
	var tied []CandidateID
	var nextToMin *int64
	for _, cid := range continuing {
		v := votes[cid]
		if v == minVotes {
			tied = append(tied, cid)
			continue
		}
		if nextToMin == nil || v < *nextToMin {
			n := v
			nextToMin = &n
		}
	}
	var margin *int64
	if nextToMin != nil {
		m := *nextToMin - minVotes
		margin = &m
	}

	selection := &ExclusionSelection{MinVotes: minVotes, NextToMinVotes: nextToMin, Margin: margin}

	if len(tied) == 1 {
		selection.Candidate = tied[0]
		return selection, nil
	}

	if snapshot := history.FindTieBreaker(tied); snapshot != nil {
		lowest := tied[0]
		for _, cid := range tied[1:] {
			if snapshot.VoteCount(cid) < snapshot.VoteCount(lowest) {
				lowest = cid
			}
		}
		selection.Candidate = lowest
		return selection, nil
	}

	sorted := append([]CandidateID(nil), tied...)
	sort.Slice(sorted, func(i, j int) bool { return order(sorted[i]) < order(sorted[j]) })
	index, err := cb(sorted)
	if err != nil {
		return nil, errors.Wrap(ErrCallbackFailure, err.Error())
	}
	if index < 0 || index >= len(sorted) {
		return nil, errors.Wrapf(ErrCallbackFailure, "exclusion tie callback returned out-of-range index %d", index)
	}
	selection.Candidate = sorted[index]
	return selection, nil
}

// ExclusionQueueItem is one pending entry on the exclusion distribution
// queue: every transaction, from every excluded candidate in this
// exclusion, sharing a single transfer value (spec.md 3, 4.7).
type ExclusionQueueItem struct {
	TransferValue Value
	Candidates    []CandidateID
	Sources       []Source
}

// ApplyExclusion partitions the transactions of the given (already
// order-assigned) excluded candidates by transfer value and returns one
// queue entry per distinct value, in descending order of value (spec.md
// 4.7).
func ApplyExclusion(ledger *Ledger, cids []CandidateID) []ExclusionQueueItem {
	type group struct {
		tv      Value
		holders []CandidateID
		sources map[CandidateID][]*BundleTransaction
	}
	groups := make(map[string]*group)
	var keys []string

	for _, cid := range cids {
		for _, tx := range ledger.BundlesOf(cid) {
			key := tx.TransferValue.String()
			g, ok := groups[key]
			if !ok {
				g = &group{tv: tx.TransferValue, sources: make(map[CandidateID][]*BundleTransaction)}
				groups[key] = g
				keys = append(keys, key)
			}
			if _, seen := g.sources[cid]; !seen {
				g.holders = append(g.holders, cid)
			}
			g.sources[cid] = append(g.sources[cid], tx)
		}
	}

	sort.Slice(keys, func(i, j int) bool { return groups[keys[i]].tv.Cmp(groups[keys[j]].tv) > 0 })

	items := make([]ExclusionQueueItem, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		sources := make([]Source, 0, len(g.holders))
		for _, cid := range g.holders {
			sources = append(sources, Source{From: cid, Transactions: g.sources[cid]})
		}
		items = append(items, ExclusionQueueItem{TransferValue: g.tv, Candidates: g.holders, Sources: sources})
	}
	return items
}
