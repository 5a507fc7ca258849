package stv

// CandidateID is an opaque identifier for a candidate. The engine never
// interprets its value; it only compares it for equality and consults
// the caller-supplied order function for stable iteration.
type CandidateID string

// TicketState is the immutable record of how far a ballot paper's
// preference sequence has been consumed. Advancing never mutates an
// existing TicketState; it produces a new one (spec.md 4.2, 9 -- the
// original Python tool's mutable up_to cursor is explicitly
// re-architected away here to eliminate aliasing across shared bundles).
type TicketState struct {
	Preferences []CandidateID
	UpTo        int
}

// newTicketState builds the initial state for a preference sequence,
// positioned before the first preference.
func newTicketState(preferences []CandidateID) TicketState {
	return TicketState{Preferences: preferences, UpTo: 0}
}

// PaperBundle is an immutable group of identically-ranked ballot papers.
type PaperBundle struct {
	State TicketState
	Size  int64
}

// Advance walks ts forward past any position whose candidate is in skip
// (the union of elected and excluded candidates), returning the next
// continuing candidate the bundle should move to, or exhausted=true if
// no preference remains. It never mutates ts; it returns the successor
// state alongside the result (spec.md 4.2).
func Advance(ts TicketState, skip map[CandidateID]bool) (next CandidateID, exhausted bool, ts2 TicketState) {
	upTo := ts.UpTo
	for upTo < len(ts.Preferences) {
		candidate := ts.Preferences[upTo]
		upTo++
		if !skip[candidate] {
			return candidate, false, TicketState{Preferences: ts.Preferences, UpTo: upTo}
		}
	}
	return "", true, TicketState{Preferences: ts.Preferences, UpTo: upTo}
}
