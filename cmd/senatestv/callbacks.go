package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausec/senatestv/stv"
)

// deterministicCallbacks always resolves a tie by choosing the first
// option offered. Both election_order_cb's permutations and the two tie
// callbacks' candidate lists are already in the caller's canonical
// order (spec.md 6), so "first option" means "lexicographically first
// permutation" and "first candidate in candidate_order_fn order"
// respectively -- a fixed, reproducible choice for unattended runs.
func deterministicCallbacks() stv.Callbacks {
	return stv.Callbacks{
		ElectionOrder: func(permutations [][]stv.CandidateID) (int, error) { return 0, nil },
		ExclusionTie:  func(candidates []stv.CandidateID) (int, error) { return 0, nil },
		ElectionTie:   func(candidates []stv.CandidateID) (int, error) { return 0, nil },
	}
}

// interactiveCallbacks prompts an attended operator on in/out for every
// tie-break the engine cannot resolve from history. This lives entirely
// outside the engine, which never performs I/O itself (spec.md 9).
func interactiveCallbacks(in io.Reader, out io.Writer) stv.Callbacks {
	scanner := bufio.NewScanner(in)
	prompt := func(label string, candidates []stv.CandidateID) (int, error) {
		fmt.Fprintf(out, "%s, choose one (0-%d):\n", label, len(candidates)-1)
		for i, cid := range candidates {
			fmt.Fprintf(out, "  [%d] %s\n", i, cid)
		}
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			idx, err := strconv.Atoi(line)
			if err != nil || idx < 0 || idx >= len(candidates) {
				fmt.Fprintf(out, "enter a number between 0 and %d\n", len(candidates)-1)
				continue
			}
			return idx, nil
		}
		return 0, errors.Wrap(stv.ErrCallbackFailure, "no response from operator")
	}

	return stv.Callbacks{
		ElectionOrder: func(permutations [][]stv.CandidateID) (int, error) {
			fmt.Fprintln(out, "candidates tied on meeting quota, choose election order:")
			for i, perm := range permutations {
				fmt.Fprintf(out, "  [%d] %v\n", i, perm)
			}
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				idx, err := strconv.Atoi(line)
				if err != nil || idx < 0 || idx >= len(permutations) {
					fmt.Fprintf(out, "enter a number between 0 and %d\n", len(permutations)-1)
					continue
				}
				return idx, nil
			}
			return 0, errors.Wrap(stv.ErrCallbackFailure, "no response from operator")
		},
		ExclusionTie: func(candidates []stv.CandidateID) (int, error) {
			return prompt("candidates tied for exclusion", candidates)
		},
		ElectionTie: func(candidates []stv.CandidateID) (int, error) {
			return prompt("candidates tied under s.273(17)", candidates)
		},
	}
}
