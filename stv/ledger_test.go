package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownSet(ids ...CandidateID) map[CandidateID]bool {
	out := make(map[CandidateID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func TestLedger_SeedGroupsByFirstPreference(t *testing.T) {
	l := NewLedger([]CandidateID{"A", "B", "C"})
	papers := PapersForCount{Entries: []PapersForCountEntry{
		{Preferences: []CandidateID{"A", "B", "C"}, Multiplicity: 60},
		{Preferences: []CandidateID{"B", "C", "A"}, Multiplicity: 30},
		{Preferences: []CandidateID{"C", "A", "B"}, Multiplicity: 10},
	}}

	total, err := l.Seed(papers, knownSet("A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
	assert.Equal(t, int64(60), l.PaperCount("A"))
	assert.Equal(t, int64(30), l.PaperCount("B"))
	assert.Equal(t, int64(10), l.PaperCount("C"))
}

func TestLedger_SeedRejectsEmptyPreferences(t *testing.T) {
	l := NewLedger([]CandidateID{"A"})
	papers := PapersForCount{Entries: []PapersForCountEntry{{Preferences: nil, Multiplicity: 1}}}
	_, err := l.Seed(papers, knownSet("A"))
	require.ErrorIs(t, err, ErrInputError)
}

func TestLedger_SeedRejectsUnknownCandidate(t *testing.T) {
	l := NewLedger([]CandidateID{"A"})
	papers := PapersForCount{Entries: []PapersForCountEntry{
		{Preferences: []CandidateID{"A", "Z"}, Multiplicity: 1},
	}}
	_, err := l.Seed(papers, knownSet("A"))
	require.ErrorIs(t, err, ErrInputError)
}

func TestLedger_TransferToFrom(t *testing.T) {
	l := NewLedger([]CandidateID{"A", "B"})
	tx, err := newBundleTransaction([]PaperBundle{{State: newTicketState([]CandidateID{"A"}), Size: 10}}, One())
	require.NoError(t, err)

	l.TransferTo("A", tx)
	assert.Equal(t, int64(10), l.PaperCount("A"))

	require.NoError(t, l.TransferFrom("A", tx))
	assert.Equal(t, int64(0), l.PaperCount("A"))

	err = l.TransferFrom("A", tx)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestNewBundleTransaction_RejectsEmpty(t *testing.T) {
	_, err := newBundleTransaction(nil, One())
	require.ErrorIs(t, err, ErrInvariantViolation)
}
