package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectForExclusion_Singleton(t *testing.T) {
	votes := map[CandidateID]int64{"A": 5, "B": 10, "C": 20}
	selection, err := SelectForExclusion([]CandidateID{"A", "B", "C"}, votes, &History{}, lexOrder([]CandidateID{"A", "B", "C"}), nil)
	require.NoError(t, err)
	assert.Equal(t, CandidateID("A"), selection.Candidate)
	assert.Equal(t, int64(5), selection.MinVotes)
	require.NotNil(t, selection.NextToMinVotes)
	assert.Equal(t, int64(10), *selection.NextToMinVotes)
	require.NotNil(t, selection.Margin)
	assert.Equal(t, int64(5), *selection.Margin)
}

func TestSelectForExclusion_HistoryBreaksTie(t *testing.T) {
	var h History
	h.Append(newCandidateAggregates(1, 100, map[CandidateID]int64{"X": 4, "Y": 6}, nil, 0, 0))
	h.Append(newCandidateAggregates(2, 100, map[CandidateID]int64{"X": 5, "Y": 5}, nil, 0, 0))

	votes := map[CandidateID]int64{"X": 5, "Y": 5}
	selection, err := SelectForExclusion([]CandidateID{"X", "Y"}, votes, &h, lexOrder([]CandidateID{"X", "Y"}), nil)
	require.NoError(t, err)
	assert.Equal(t, CandidateID("X"), selection.Candidate)
}

func TestSelectForExclusion_FallsBackToCallback(t *testing.T) {
	votes := map[CandidateID]int64{"X": 5, "Y": 5}
	cb := func(candidates []CandidateID) (int, error) {
		assert.Equal(t, []CandidateID{"X", "Y"}, candidates)
		return 1, nil
	}
	selection, err := SelectForExclusion([]CandidateID{"Y", "X"}, votes, &History{}, lexOrder([]CandidateID{"X", "Y"}), cb)
	require.NoError(t, err)
	assert.Equal(t, CandidateID("Y"), selection.Candidate)
}

func TestApplyExclusion_PartitionsByTransferValueDescending(t *testing.T) {
	l := NewLedger([]CandidateID{"A", "B"})
	tx1, _ := newBundleTransaction([]PaperBundle{{State: newTicketState([]CandidateID{"A"}), Size: 10}}, NewRatio(1, 2))
	tx2, _ := newBundleTransaction([]PaperBundle{{State: newTicketState([]CandidateID{"A"}), Size: 5}}, One())
	l.TransferTo("A", tx1)
	l.TransferTo("A", tx2)
	tx3, _ := newBundleTransaction([]PaperBundle{{State: newTicketState([]CandidateID{"B"}), Size: 20}}, NewRatio(1, 2))
	l.TransferTo("B", tx3)

	items := ApplyExclusion(l, []CandidateID{"A", "B"})
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].TransferValue.Cmp(One()))
	assert.Equal(t, 0, items[1].TransferValue.Cmp(NewRatio(1, 2)))
	assert.ElementsMatch(t, []CandidateID{"A", "B"}, items[1].Candidates)
}
