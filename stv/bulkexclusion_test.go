package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkExclusionCandidates_TooFewContinuing(t *testing.T) {
	votes := map[CandidateID]int64{"A": 10}
	result := BulkExclusionCandidates([]CandidateID{"A"}, votes, 50, 1, 0, lexOrder([]CandidateID{"A"}))
	assert.Nil(t, result)
}

func TestBulkExclusionCandidates_BBelowLeadingShortfall(t *testing.T) {
	ids := []CandidateID{"P", "Q", "R", "S"}
	votes := map[CandidateID]int64{"P": 30, "Q": 20, "R": 10, "S": 5}
	result := BulkExclusionCandidates(ids, votes, 50, 1, 0, lexOrder(ids))
	assert.Equal(t, []CandidateID{"S", "R"}, result)
}

func TestBulkExclusionCandidates_NoAExcludesDownFromTop(t *testing.T) {
	ids := []CandidateID{"P", "Q", "R", "S"}
	votes := map[CandidateID]int64{"P": 30, "Q": 20, "R": 10, "S": 5}
	result := BulkExclusionCandidates(ids, votes, 1000, 1, 0, lexOrder(ids))
	assert.Equal(t, []CandidateID{"S", "R", "Q", "P"}, result)
}

// A tied tier sitting directly above B must not suppress B's predicate
// check: A1 and A2 share votes(30), so the tier above R is a tie, but
// R's notional is still compared against that tier's shared vote total.
func TestBulkExclusionCandidates_BPredicateIgnoresHigherTierTie(t *testing.T) {
	ids := []CandidateID{"S", "R", "A1", "A2", "Z"}
	votes := map[CandidateID]int64{"S": 5, "R": 10, "A1": 30, "A2": 30, "Z": 40}
	result := BulkExclusionCandidates(ids, votes, 140, 1, 0, lexOrder(ids))
	assert.Equal(t, []CandidateID{"S", "R"}, result)
}
