package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEndState_Section273_18(t *testing.T) {
	votes := map[CandidateID]int64{"A": 10}
	state, ok, err := CheckEndState([]CandidateID{"A"}, votes, 1, lexOrder([]CandidateID{"A"}), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []CandidateID{"A"}, state.Elected)
}

func TestCheckEndState_Section273_17_HigherVotesWins(t *testing.T) {
	votes := map[CandidateID]int64{"X": 40, "Y": 30}
	state, ok, err := CheckEndState([]CandidateID{"X", "Y"}, votes, 1, lexOrder([]CandidateID{"X", "Y"}), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []CandidateID{"X"}, state.Elected)
}

func TestCheckEndState_Section273_17_TieInvokesCallback(t *testing.T) {
	votes := map[CandidateID]int64{"X": 40, "Y": 40}
	cb := func(candidates []CandidateID) (int, error) { return 1, nil }
	state, ok, err := CheckEndState([]CandidateID{"X", "Y"}, votes, 1, lexOrder([]CandidateID{"X", "Y"}), cb)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []CandidateID{"Y"}, state.Elected)
}

func TestCheckEndState_NeitherApplies(t *testing.T) {
	votes := map[CandidateID]int64{"X": 40, "Y": 30, "Z": 20}
	_, ok, err := CheckEndState([]CandidateID{"X", "Y", "Z"}, votes, 1, lexOrder([]CandidateID{"X", "Y", "Z"}), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
