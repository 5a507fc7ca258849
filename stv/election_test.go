package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElect_FinalSeatHasNoTransfer(t *testing.T) {
	assert.Nil(t, Elect("A", 60, 51, 70, true))
}

func TestElect_ComputesExcessAndTransferValue(t *testing.T) {
	item := Elect("A", 70, 51, 70, false)
	require.NotNil(t, item)
	assert.Equal(t, int64(19), item.ExcessVotes)
	assert.Equal(t, 0, item.TransferValue.Cmp(NewRatio(19, 70)))
}

func TestElect_ZeroPapersGivesZeroTransferValue(t *testing.T) {
	item := Elect("A", 51, 51, 0, false)
	require.NotNil(t, item)
	assert.True(t, item.TransferValue.IsZero())
}

func TestResolveElectionOrder_NoTieSortsDescending(t *testing.T) {
	votes := map[CandidateID]int64{"A": 60, "B": 40, "C": 50}
	order, err := ResolveElectionOrder([]CandidateID{"A", "B", "C"}, votes, &History{}, lexOrder([]CandidateID{"A", "B", "C"}), nil)
	require.NoError(t, err)
	assert.Equal(t, []CandidateID{"A", "C", "B"}, order)
}

func TestResolveElectionOrder_UsesHistoryBeforeCallback(t *testing.T) {
	var h History
	h.Append(newCandidateAggregates(1, 100, map[CandidateID]int64{"X": 6, "Y": 4}, nil, 0, 0))

	called := false
	cb := func([][]CandidateID) (int, error) {
		called = true
		return 0, nil
	}

	order, err := ResolveElectionOrder([]CandidateID{"X", "Y"}, map[CandidateID]int64{"X": 5, "Y": 5}, &h, lexOrder([]CandidateID{"X", "Y"}), cb)
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, []CandidateID{"X", "Y"}, order)
}

func TestResolveElectionOrder_FallsBackToCallback(t *testing.T) {
	var h History
	var seenPermutations [][]CandidateID
	cb := func(permutations [][]CandidateID) (int, error) {
		seenPermutations = permutations
		return 1, nil
	}

	order, err := ResolveElectionOrder([]CandidateID{"Y", "X"}, map[CandidateID]int64{"X": 5, "Y": 5}, &h, lexOrder([]CandidateID{"X", "Y"}), cb)
	require.NoError(t, err)
	assert.Equal(t, [][]CandidateID{{"X", "Y"}, {"Y", "X"}}, seenPermutations)
	assert.Equal(t, []CandidateID{"Y", "X"}, order)
}

func TestLexicographicPermutations_ThreeElements(t *testing.T) {
	perms := lexicographicPermutations([]CandidateID{"A", "B", "C"})
	assert.Equal(t, [][]CandidateID{
		{"A", "B", "C"},
		{"A", "C", "B"},
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"C", "A", "B"},
		{"C", "B", "A"},
	}, perms)
}
