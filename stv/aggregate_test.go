package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_FindTieBreaker(t *testing.T) {
	var h History
	h.Append(newCandidateAggregates(1, 100, map[CandidateID]int64{"X": 4, "Y": 6}, nil, 0, 0))
	h.Append(newCandidateAggregates(2, 100, map[CandidateID]int64{"X": 5, "Y": 5}, nil, 0, 0))

	snapshot := h.FindTieBreaker([]CandidateID{"X", "Y"})
	if assert.NotNil(t, snapshot) {
		assert.Equal(t, 1, snapshot.RoundNumber)
	}
}

func TestHistory_FindTieBreaker_NoneFound(t *testing.T) {
	var h History
	h.Append(newCandidateAggregates(1, 100, map[CandidateID]int64{"X": 5, "Y": 5}, nil, 0, 0))

	assert.Nil(t, h.FindTieBreaker([]CandidateID{"X", "Y"}))
}

func TestNewCandidateAggregates_GainLoss(t *testing.T) {
	a := newCandidateAggregates(1, 100,
		map[CandidateID]int64{"A": 60, "B": 39},
		map[CandidateID]int64{"A": 60, "B": 39},
		0, 0)
	assert.Equal(t, int64(1), a.GainLossVotes)
	assert.Equal(t, int64(1), a.GainLossPapers)
}
