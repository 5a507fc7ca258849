package stv

import (
	"sort"

	"github.com/pkg/errors"
)

// Ordering assigns each candidate a stable sort key, used only to make
// iteration order (and therefore event and output order) deterministic.
// It is never consulted to resolve a statutory tie (spec.md 3).
type Ordering func(CandidateID) int

// Source is one candidate's set of transactions being removed and
// redistributed in a single distribution (spec.md 4.4).
type Source struct {
	From         CandidateID
	Transactions []*BundleTransaction
}

// Distribute implements spec.md 4.4's distribution engine: for each
// source transaction, it subtracts the transaction's votes from the
// source candidate, advances every bundle inside past any candidate in
// skip, and regroups the advancing bundles by destination candidate.
// Exactly one new BundleTransaction is appended per destination,
// aggregated across all sources, at transfer value tv. votes is mutated
// in place to reflect the round's net changes. It returns the exhausted
// votes and papers generated by this distribution.
func Distribute(ledger *Ledger, votes map[CandidateID]int64, sources []Source, tv Value, skip map[CandidateID]bool, order Ordering) (exhaustedVotes, exhaustedPapers int64, err error) {
	type accumulated struct {
		bundles []PaperBundle
	}
	incoming := make(map[CandidateID]*accumulated)

	for _, source := range sources {
		for _, tx := range source.Transactions {
			if tx.TransferValue.Cmp(tv) != 0 {
				return 0, 0, errors.Wrapf(ErrInvariantViolation, "mixed transfer value in distribution from %q", source.From)
			}
			votes[source.From] -= tx.Votes
			if err := ledger.TransferFrom(source.From, tx); err != nil {
				return 0, 0, errors.Wrapf(err, "removing transaction from %q", source.From)
			}
			for _, bundle := range tx.Bundles {
				next, exhausted, nextState := Advance(bundle.State, skip)
				if exhausted {
					exhaustedPapers += bundle.Size
					continue
				}
				acc, ok := incoming[next]
				if !ok {
					acc = &accumulated{}
					incoming[next] = acc
				}
				acc.bundles = append(acc.bundles, PaperBundle{State: nextState, Size: bundle.Size})
			}
		}
	}

	destinations := make([]CandidateID, 0, len(incoming))
	for cid := range incoming {
		destinations = append(destinations, cid)
	}
	sort.Slice(destinations, func(i, j int) bool { return order(destinations[i]) < order(destinations[j]) })

	for _, cid := range destinations {
		tx, err := newBundleTransaction(incoming[cid].bundles, tv)
		if err != nil {
			return 0, 0, err
		}
		ledger.TransferTo(cid, tx)
		votes[cid] += tx.Votes
	}

	exhaustedVotes = tv.MulInt(exhaustedPapers).Floor()
	return exhaustedVotes, exhaustedPapers, nil
}
