package stv

import (
	"sort"

	"github.com/pkg/errors"
)

// ElectionTieCallback resolves the s.273(17) tie between the last two
// continuing candidates (spec.md 4.9, 6: election_tie_cb).
type ElectionTieCallback func(candidates []CandidateID) (int, error)

// EndState is the outcome of checking spec.md 4.9's end-of-count short
// circuits.
type EndState struct {
	Elected   []CandidateID
	Provision string
}

// CheckEndState tries s.273(18) then s.273(17), in that order, as
// spec.md 4.10 step 4b requires. It returns ok=false if neither applies.
func CheckEndState(continuing []CandidateID, votes map[CandidateID]int64, vacanciesRemaining int, order Ordering, cb ElectionTieCallback) (EndState, bool, error) {
	if len(continuing) == vacanciesRemaining {
		sorted := append([]CandidateID(nil), continuing...)
		sort.Slice(sorted, func(i, j int) bool {
			if votes[sorted[i]] != votes[sorted[j]] {
				return votes[sorted[i]] > votes[sorted[j]]
			}
			return order(sorted[i]) < order(sorted[j])
		})
		return EndState{Elected: sorted, Provision: "s.273(18): continuing candidates equal remaining vacancies; all elected"}, true, nil
	}

	if len(continuing) == 2 {
		a, b := continuing[0], continuing[1]
		if votes[a] == votes[b] {
			sorted := append([]CandidateID(nil), continuing...)
			sort.Slice(sorted, func(i, j int) bool { return order(sorted[i]) < order(sorted[j]) })
			index, err := cb(sorted)
			if err != nil {
				return EndState{}, false, errors.Wrap(ErrCallbackFailure, err.Error())
			}
			if index < 0 || index >= len(sorted) {
				return EndState{}, false, errors.Wrapf(ErrCallbackFailure, "s.273(17) tie callback returned out-of-range index %d", index)
			}
			return EndState{Elected: []CandidateID{sorted[index]}, Provision: "s.273(17): two continuing candidates, tie resolved by callback"}, true, nil
		}
		if votes[a] < votes[b] {
			a, b = b, a
		}
		return EndState{Elected: []CandidateID{a}, Provision: "s.273(17): two continuing candidates, higher-voted elected"}, true, nil
	}

	return EndState{}, false, nil
}
