package stv

import (
	"context"

	"github.com/pkg/errors"
)

// Callbacks bundles the three tie-resolution callbacks spec.md 6
// requires of the caller. The engine invokes them inline and treats any
// error they return as fatal (spec.md 5, 7).
type Callbacks struct {
	ElectionOrder ElectionOrderCallback
	ExclusionTie  ExclusionTieCallback
	ElectionTie   ElectionTieCallback
}

// Config is the full set of engine-facing inputs of spec.md 6.
type Config struct {
	Vacancies             int
	PapersForCount        PapersForCount
	CandidateIDs          []CandidateID
	Order                 Ordering
	DisableBulkExclusions bool
	Callbacks             Callbacks
	Sink                  Sink
}

// Engine is the round-driven state machine of spec.md 4.10. It
// exclusively owns the ledger, the two pending distribution queues, and
// the round-by-round aggregate history; every other type in this
// package is a pure function or value it composes.
type Engine struct {
	cfg     Config
	ledger  *Ledger
	known   map[CandidateID]bool
	history History

	quota       int64
	totalPapers int64

	round      int
	elected    []CandidateID
	excluded   []CandidateID
	electedAt  map[CandidateID]bool
	excludedAt map[CandidateID]bool

	exhaustedVotes  int64
	exhaustedPapers int64

	electionQueue  []ElectionQueueItem
	exclusionQueue []ExclusionQueueItem
}

// NewEngine validates cfg and builds an Engine ready to Run. It does not
// seed the ledger yet; that happens on the first Run call so that a
// seeding InputError surfaces from Run, not the constructor.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Vacancies <= 0 {
		return nil, errors.Wrap(ErrInputError, "vacancies must be positive")
	}
	known := make(map[CandidateID]bool, len(cfg.CandidateIDs))
	for _, cid := range cfg.CandidateIDs {
		known[cid] = true
	}
	return &Engine{
		cfg:        cfg,
		ledger:     NewLedger(cfg.CandidateIDs),
		known:      known,
		electedAt:  make(map[CandidateID]bool),
		excludedAt: make(map[CandidateID]bool),
	}, nil
}

func (e *Engine) skipSet() map[CandidateID]bool {
	skip := make(map[CandidateID]bool, len(e.electedAt)+len(e.excludedAt))
	for cid := range e.electedAt {
		skip[cid] = true
	}
	for cid := range e.excludedAt {
		skip[cid] = true
	}
	return skip
}

func (e *Engine) continuing() []CandidateID {
	out := make([]CandidateID, 0, len(e.cfg.CandidateIDs))
	for _, cid := range e.cfg.CandidateIDs {
		if !e.electedAt[cid] && !e.excludedAt[cid] {
			out = append(out, cid)
		}
	}
	return out
}

// Run drives the engine from INIT to DONE, emitting the event protocol
// of spec.md 6 to cfg.Sink. ctx is checked only at round boundaries,
// purely so a long-running host process can cancel between rounds; the
// engine never suspends mid-round (spec.md 5).
func (e *Engine) Run(ctx context.Context) error {
	totalPapers, err := e.ledger.Seed(e.cfg.PapersForCount, e.known)
	if err != nil {
		return err
	}
	e.totalPapers = totalPapers
	e.quota = totalPapers/int64(e.cfg.Vacancies+1) + 1

	e.cfg.Sink.Emit(Started{Vacancies: e.cfg.Vacancies, TotalPapers: totalPapers, Quota: e.quota})

	votes := e.ledger.PaperCounts()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.round++
		e.cfg.Sink.Emit(RoundBegin{RoundNumber: e.round})

		if e.round > 1 {
			votes, err = e.runDistribution()
			if err != nil {
				return err
			}
		}

		aggregates := newCandidateAggregates(e.round, e.totalPapers, votes, e.ledger.PaperCounts(), e.exhaustedVotes, e.exhaustedPapers)
		e.history.Append(aggregates)
		e.cfg.Sink.Emit(CandidateAggregatesEvent{Aggregates: aggregates})

		done, err := e.applyElections(votes)
		if err != nil {
			return err
		}
		if done {
			e.cfg.Sink.Emit(RoundComplete{RoundNumber: e.round})
			e.cfg.Sink.Emit(Finished{})
			return nil
		}

		if len(e.electionQueue) == 0 && len(e.exclusionQueue) == 0 {
			finished, err := e.tryEndState(votes)
			if err != nil {
				return err
			}
			if finished {
				e.cfg.Sink.Emit(RoundComplete{RoundNumber: e.round})
				e.cfg.Sink.Emit(Finished{})
				return nil
			}
		}

		if len(e.electionQueue) == 0 && len(e.exclusionQueue) == 0 {
			if err := e.scheduleExclusion(votes); err != nil {
				return err
			}
		}

		e.cfg.Sink.Emit(RoundComplete{RoundNumber: e.round})
	}
}

// runDistribution processes exactly one pending distribution (exclusion
// queue takes priority over election queue, spec.md 4.10 step 1) and
// returns the round's updated vote totals.
func (e *Engine) runDistribution() (map[CandidateID]int64, error) {
	votes := make(map[CandidateID]int64, len(e.cfg.CandidateIDs))
	for cid, n := range e.snapshotVotes() {
		votes[cid] = n
	}

	skip := e.skipSet()

	switch {
	case len(e.exclusionQueue) > 0:
		item := e.exclusionQueue[0]
		e.exclusionQueue = e.exclusionQueue[1:]
		exhaustedVotes, exhaustedPapers, err := Distribute(e.ledger, votes, item.Sources, item.TransferValue, skip, e.cfg.Order)
		if err != nil {
			return nil, err
		}
		e.exhaustedVotes += exhaustedVotes
		e.exhaustedPapers += exhaustedPapers
		e.cfg.Sink.Emit(ExclusionDistributionPerformed{Candidates: item.Candidates, TransferValue: item.TransferValue})
		return votes, nil

	case len(e.electionQueue) > 0:
		item := e.electionQueue[0]
		e.electionQueue = e.electionQueue[1:]
		sources := []Source{{From: item.CandidateID, Transactions: e.ledger.BundlesOf(item.CandidateID)}}
		exhaustedVotes, exhaustedPapers, err := Distribute(e.ledger, votes, sources, item.TransferValue, skip, e.cfg.Order)
		if err != nil {
			return nil, err
		}
		e.exhaustedVotes += exhaustedVotes
		e.exhaustedPapers += exhaustedPapers
		// spec.md 4.6: after the election distribution, the elected
		// candidate's vote count is fixed at exactly quota.
		votes[item.CandidateID] = e.quota
		e.cfg.Sink.Emit(ElectionDistributionPerformed{CandidateID: item.CandidateID, TransferValue: item.TransferValue})
		return votes, nil

	default:
		return nil, errors.Wrap(ErrUnreachableState, "round with neither pending exclusion nor pending election distribution")
	}
}

// snapshotVotes carries forward the last known vote count for elected
// and excluded candidates, whose totals are never touched by a
// distribution they are not a source or destination of.
func (e *Engine) snapshotVotes() map[CandidateID]int64 {
	latest := e.history.Latest()
	if latest == nil {
		return nil
	}
	return latest.Votes
}

// applyElections resolves and enqueues every candidate reaching quota
// this round, in election order (spec.md 4.6, 4.10 step 4a). done is
// true once every vacancy is filled.
func (e *Engine) applyElections(votes map[CandidateID]int64) (done bool, err error) {
	var meetingQuota []CandidateID
	for _, cid := range e.continuing() {
		if votes[cid] >= e.quota {
			meetingQuota = append(meetingQuota, cid)
		}
	}
	if len(meetingQuota) == 0 {
		return false, nil
	}

	ordered, err := ResolveElectionOrder(meetingQuota, votes, &e.history, e.cfg.Order, e.cfg.Callbacks.ElectionOrder)
	if err != nil {
		return false, err
	}

	for _, cid := range ordered {
		if len(e.elected) >= e.cfg.Vacancies {
			break
		}
		if e.electedAt[cid] {
			return false, errors.Wrapf(ErrInvariantViolation, "candidate %q elected twice", cid)
		}

		order := len(e.elected) + 1
		finalSeat := order == e.cfg.Vacancies
		paperCount := e.ledger.PaperCount(cid)
		queued := Elect(cid, votes[cid], e.quota, paperCount, finalSeat)

		e.elected = append(e.elected, cid)
		e.electedAt[cid] = true

		event := CandidateElected{CandidateID: cid, Order: order}
		if queued != nil {
			excess := queued.ExcessVotes
			pc := paperCount
			tv := queued.TransferValue
			event.ExcessVotes = &excess
			event.PaperCount = &pc
			event.TransferValue = &tv
			e.electionQueue = append(e.electionQueue, *queued)
		}
		e.cfg.Sink.Emit(event)

		if len(e.elected) == e.cfg.Vacancies {
			return true, nil
		}
	}
	return len(e.elected) == e.cfg.Vacancies, nil
}

// tryEndState checks s.273(18) then s.273(17) (spec.md 4.9, 4.10 step
// 4b). finished is true if either applied, which always fills every
// remaining vacancy.
func (e *Engine) tryEndState(votes map[CandidateID]int64) (finished bool, err error) {
	continuing := e.continuing()
	remaining := e.cfg.Vacancies - len(e.elected)
	if remaining <= 0 {
		return false, nil
	}

	state, ok, err := CheckEndState(continuing, votes, remaining, e.cfg.Order, e.cfg.Callbacks.ElectionTie)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	e.cfg.Sink.Emit(ProvisionUsed{Text: state.Provision})
	for _, cid := range state.Elected {
		order := len(e.elected) + 1
		e.elected = append(e.elected, cid)
		e.electedAt[cid] = true
		e.cfg.Sink.Emit(CandidateElected{CandidateID: cid, Order: order})
	}
	return true, nil
}

// scheduleExclusion tries s.273(13) bulk exclusion, then falls back to
// single-candidate exclusion, repeating the latter until the exclusion
// queue has work or no continuing candidates remain (spec.md 4.8, 4.7,
// 4.10 step 4c).
func (e *Engine) scheduleExclusion(votes map[CandidateID]int64) error {
	for len(e.exclusionQueue) == 0 {
		continuing := e.continuing()
		if len(continuing) == 0 {
			return errors.Wrap(ErrUnreachableState, "no continuing candidates left to exclude")
		}

		if !e.cfg.DisableBulkExclusions {
			pendingExcess := e.pendingElectionExcess()
			bulk := BulkExclusionCandidates(continuing, votes, e.quota, e.cfg.Vacancies-len(e.elected), pendingExcess, e.cfg.Order)
			if len(bulk) > 1 {
				if err := e.exclude(bulk, ExclusionReasonBulk, nil, nil, nil); err != nil {
					return err
				}
				continue
			}
		}

		selection, err := SelectForExclusion(continuing, votes, &e.history, e.cfg.Order, e.cfg.Callbacks.ExclusionTie)
		if err != nil {
			return err
		}
		if err := e.exclude([]CandidateID{selection.Candidate}, ExclusionReasonSingle, &selection.MinVotes, selection.NextToMinVotes, selection.Margin); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pendingElectionExcess() int64 {
	var total int64
	for _, item := range e.electionQueue {
		total += item.ExcessVotes
	}
	return total
}

// exclude assigns order to each candidate in cids, records them
// excluded, enqueues their transactions for distribution, and emits
// CandidatesExcluded (spec.md 4.7, 4.8).
func (e *Engine) exclude(cids []CandidateID, reason ExclusionReason, minVotes, nextToMin, margin *int64) error {
	for _, cid := range cids {
		if e.excludedAt[cid] {
			return errors.Wrapf(ErrInvariantViolation, "candidate %q excluded twice", cid)
		}
	}
	for _, cid := range cids {
		e.excluded = append(e.excluded, cid)
		e.excludedAt[cid] = true
	}

	items := ApplyExclusion(e.ledger, cids)
	transferValues := make([]Value, len(items))
	for i, item := range items {
		transferValues[i] = item.TransferValue
	}
	e.exclusionQueue = append(e.exclusionQueue, items...)

	e.cfg.Sink.Emit(CandidatesExcluded{
		Candidates:     cids,
		TransferValues: transferValues,
		Reason:         reason,
		MinVotes:       minVotes,
		NextToMinVotes: nextToMin,
		Margin:         margin,
	})
	return nil
}

// Elected returns the candidates elected so far, in election order.
func (e *Engine) Elected() []CandidateID { return append([]CandidateID(nil), e.elected...) }

// Excluded returns the candidates excluded so far, in exclusion order.
func (e *Engine) Excluded() []CandidateID { return append([]CandidateID(nil), e.excluded...) }
