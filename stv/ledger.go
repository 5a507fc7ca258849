package stv

import (
	"github.com/pkg/errors"
)

// BundleTransaction is an immutable, non-empty group of paper bundles
// received together at a common transfer value (spec.md 3/4.3). Votes is
// derived once at construction: floor(sum(bundle.Size) * TransferValue).
type BundleTransaction struct {
	Bundles       []PaperBundle
	TransferValue Value
	Votes         int64
}

// newBundleTransaction builds a BundleTransaction from bundles sharing a
// transfer value. It is an invariant violation for bundles to disagree
// on transfer value or for the group to be empty (spec.md 3).
func newBundleTransaction(bundles []PaperBundle, tv Value) (*BundleTransaction, error) {
	if len(bundles) == 0 {
		return nil, errors.Wrap(ErrInvariantViolation, "bundle transaction must contain at least one bundle")
	}
	var total int64
	for _, b := range bundles {
		total += b.Size
	}
	votes := tv.MulInt(total).Floor()
	return &BundleTransaction{Bundles: bundles, TransferValue: tv, Votes: votes}, nil
}

// Papers returns the total paper count carried by the transaction.
func (t *BundleTransaction) Papers() int64 {
	var total int64
	for _, b := range t.Bundles {
		total += b.Size
	}
	return total
}

// Ledger is the per-candidate mapping from CandidateID to the ordered
// list of BundleTransactions currently held, plus an incremental
// paper-count cache (spec.md 4.3).
type Ledger struct {
	transactions map[CandidateID][]*BundleTransaction
	paperCounts  map[CandidateID]int64
}

// NewLedger builds an empty ledger with an entry for every known
// candidate, so paper_count(cid) is always defined even for candidates
// holding nothing.
func NewLedger(candidateIDs []CandidateID) *Ledger {
	l := &Ledger{
		transactions: make(map[CandidateID][]*BundleTransaction, len(candidateIDs)),
		paperCounts:  make(map[CandidateID]int64, len(candidateIDs)),
	}
	for _, cid := range candidateIDs {
		l.transactions[cid] = nil
		l.paperCounts[cid] = 0
	}
	return l
}

// TransferTo appends tx to cid's transaction list and updates the paper
// count cache.
func (l *Ledger) TransferTo(cid CandidateID, tx *BundleTransaction) {
	l.transactions[cid] = append(l.transactions[cid], tx)
	l.paperCounts[cid] += tx.Papers()
}

// TransferFrom removes tx (by identity) from cid's transaction list.
// Returns ErrTransactionNotFound if tx is not present.
func (l *Ledger) TransferFrom(cid CandidateID, tx *BundleTransaction) error {
	list := l.transactions[cid]
	for i, candidate := range list {
		if candidate == tx {
			l.transactions[cid] = append(list[:i], list[i+1:]...)
			l.paperCounts[cid] -= tx.Papers()
			return nil
		}
	}
	return errors.Wrapf(ErrTransactionNotFound, "candidate %q", cid)
}

// PaperCount returns the current paper count for cid, O(1).
func (l *Ledger) PaperCount(cid CandidateID) int64 {
	return l.paperCounts[cid]
}

// PaperCounts returns a snapshot map of paper counts for every known
// candidate.
func (l *Ledger) PaperCounts() map[CandidateID]int64 {
	out := make(map[CandidateID]int64, len(l.paperCounts))
	for cid, n := range l.paperCounts {
		out[cid] = n
	}
	return out
}

// BundlesOf returns a snapshot copy of cid's current transaction list.
// Callers may safely range over it while the ledger continues to mutate.
func (l *Ledger) BundlesOf(cid CandidateID) []*BundleTransaction {
	list := l.transactions[cid]
	out := make([]*BundleTransaction, len(list))
	copy(out, list)
	return out
}

// PapersForCount is the multiset of distinct preference sequences to be
// seeded into the count, each with its multiplicity. Ingestion is
// responsible for aggregating identical sequences before they reach the
// ledger (spec.md 3).
type PapersForCount struct {
	Entries []PapersForCountEntry
}

// PapersForCountEntry is one distinct preference sequence and its
// multiplicity.
type PapersForCountEntry struct {
	Preferences  []CandidateID
	Multiplicity int64
}

// TotalPapers returns the sum of multiplicities across all entries.
func (p PapersForCount) TotalPapers() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Multiplicity
	}
	return total
}

// Seed builds the round-1 ledger state from papers: for each distinct
// preference sequence, a single PaperBundle at transfer value 1 is
// placed under the CandidateID of its first preference (spec.md 4.3). It
// rejects empty preference sequences, non-positive multiplicities, and
// references to unknown candidates with InputError.
func (l *Ledger) Seed(papers PapersForCount, known map[CandidateID]bool) (int64, error) {
	type group struct {
		bundles []PaperBundle
	}
	byFirst := make(map[CandidateID]*group)
	var total int64
	for _, e := range papers.Entries {
		if len(e.Preferences) == 0 {
			return 0, errors.Wrap(ErrInputError, "preference sequence with no preferences")
		}
		if e.Multiplicity <= 0 {
			return 0, errors.Wrapf(ErrInputError, "non-positive multiplicity %d", e.Multiplicity)
		}
		for _, cid := range e.Preferences {
			if !known[cid] {
				return 0, errors.Wrapf(ErrInputError, "unknown candidate %q", cid)
			}
		}
		first := e.Preferences[0]
		g, ok := byFirst[first]
		if !ok {
			g = &group{}
			byFirst[first] = g
		}
		g.bundles = append(g.bundles, PaperBundle{State: newTicketState(e.Preferences), Size: e.Multiplicity})
		total += e.Multiplicity
	}
	for cid, g := range byFirst {
		tx, err := newBundleTransaction(g.bundles, One())
		if err != nil {
			return 0, err
		}
		l.TransferTo(cid, tx)
	}
	return total, nil
}
