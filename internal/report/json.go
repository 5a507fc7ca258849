// Package report assembles the engine's event stream into the per-count
// result document and serializes it as JSON.
package report

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ausec/senatestv/internal/jsonfast"
	"github.com/ausec/senatestv/stv"
)

// CandidateInfo is the per-candidate metadata carried through from the
// roster: the engine itself only ever deals in CandidateID.
type CandidateInfo struct {
	ID    stv.CandidateID `json:"id"`
	Name  string          `json:"name"`
	Party string          `json:"party"`
}

// Document is the complete per-count result written to out_dir.
type Document struct {
	Parameters Parameters      `json:"parameters"`
	Candidates []CandidateInfo `json:"candidates"`
	Parties    []string        `json:"parties"`
	Rounds     []*Round        `json:"rounds"`
	Summary    Summary         `json:"summary"`
}

// Parameters records the fixed facts about a count plus the wall-clock
// span it ran over.
type Parameters struct {
	RunID       string    `json:"run_id"`
	Vacancies   int       `json:"vacancies"`
	TotalPapers int64     `json:"total_papers"`
	Quota       int64     `json:"quota"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Round is one round's full record.
type Round struct {
	Number       int            `json:"number"`
	Distribution *Distribution  `json:"distribution,omitempty"`
	Aggregates   *RoundSnapshot `json:"aggregates,omitempty"`
	Elected      []Elected      `json:"elected,omitempty"`
	Exclusion    *Exclusion     `json:"exclusion,omitempty"`
	Note         string         `json:"note,omitempty"`
}

// Distribution describes the single queue item (election or exclusion)
// consumed this round, if any.
type Distribution struct {
	Kind          string            `json:"kind"`
	Candidates    []stv.CandidateID `json:"candidates"`
	TransferValue string            `json:"transfer_value"`
}

// RoundSnapshot is the JSON shape of a stv.CandidateAggregates.
type RoundSnapshot struct {
	Votes           map[stv.CandidateID]int64 `json:"votes"`
	Papers          map[stv.CandidateID]int64 `json:"papers"`
	ExhaustedVotes  int64                     `json:"exhausted_votes"`
	ExhaustedPapers int64                     `json:"exhausted_papers"`
	GainLossVotes   int64                     `json:"gain_loss_votes"`
	GainLossPapers  int64                     `json:"gain_loss_papers"`
}

// Elected is one candidate_elected event, rendered for the round it
// happened in.
type Elected struct {
	CandidateID   stv.CandidateID `json:"candidate_id"`
	Order         int             `json:"order"`
	ExcessVotes   *int64          `json:"excess_votes,omitempty"`
	PaperCount    *int64          `json:"paper_count,omitempty"`
	TransferValue *string         `json:"transfer_value,omitempty"`
}

// Exclusion is one candidates_excluded event, rendered for the round it
// happened in.
type Exclusion struct {
	Candidates     []stv.CandidateID `json:"candidates"`
	TransferValues []string          `json:"transfer_values"`
	Reason         string            `json:"reason"`
	MinVotes       *int64            `json:"min_votes,omitempty"`
	NextToMinVotes *int64            `json:"next_to_min_votes,omitempty"`
	Margin         *int64            `json:"margin,omitempty"`
}

// Summary is the count's final outcome: every elected candidate in
// election order, and every excluded candidate in exclusion order.
type Summary struct {
	Elected  []Elected         `json:"elected"`
	Excluded []stv.CandidateID `json:"excluded"`
}

// JSONSink implements stv.Sink, accumulating the event stream into a
// Document and serializing it on demand.
type JSONSink struct {
	marshaler jsonfast.Marshaler
	doc       Document
	current   *Round
}

// NewJSONSink builds a sink with fixed candidate and party metadata. A
// nil marshaler defaults to jsonfast.Default.
func NewJSONSink(candidates []CandidateInfo, parties []string, marshaler jsonfast.Marshaler) *JSONSink {
	if marshaler == nil {
		marshaler = jsonfast.Default
	}
	return &JSONSink{
		marshaler: marshaler,
		doc: Document{
			Parameters: Parameters{RunID: RunID()},
			Candidates: candidates,
			Parties:    parties,
		},
	}
}

// RunID generates a fresh run identifier, grounded on the corpus's use
// of google/uuid for correlating records across a run.
func RunID() string { return uuid.New().String() }

// Emit implements stv.Sink.
func (s *JSONSink) Emit(e stv.Event) {
	switch ev := e.(type) {
	case stv.Started:
		s.doc.Parameters = Parameters{
			RunID:       s.doc.Parameters.RunID,
			Vacancies:   ev.Vacancies,
			TotalPapers: ev.TotalPapers,
			Quota:       ev.Quota,
			StartedAt:   now(),
		}
	case stv.RoundBegin:
		s.current = &Round{Number: ev.RoundNumber}
	case stv.ElectionDistributionPerformed:
		s.current.Distribution = &Distribution{
			Kind:          "election",
			Candidates:    []stv.CandidateID{ev.CandidateID},
			TransferValue: ev.TransferValue.String(),
		}
	case stv.ExclusionDistributionPerformed:
		s.current.Distribution = &Distribution{
			Kind:          "exclusion",
			Candidates:    ev.Candidates,
			TransferValue: ev.TransferValue.String(),
		}
	case stv.CandidateAggregatesEvent:
		s.current.Aggregates = snapshotOf(ev.Aggregates)
	case stv.CandidateElected:
		elected := Elected{
			CandidateID: ev.CandidateID,
			Order:       ev.Order,
			ExcessVotes: ev.ExcessVotes,
			PaperCount:  ev.PaperCount,
		}
		if ev.TransferValue != nil {
			tv := ev.TransferValue.String()
			elected.TransferValue = &tv
		}
		s.current.Elected = append(s.current.Elected, elected)
		s.doc.Summary.Elected = append(s.doc.Summary.Elected, elected)
	case stv.CandidatesExcluded:
		transferValues := make([]string, len(ev.TransferValues))
		for i, tv := range ev.TransferValues {
			transferValues[i] = tv.String()
		}
		s.current.Exclusion = &Exclusion{
			Candidates:     ev.Candidates,
			TransferValues: transferValues,
			Reason:         string(ev.Reason),
			MinVotes:       ev.MinVotes,
			NextToMinVotes: ev.NextToMinVotes,
			Margin:         ev.Margin,
		}
		s.doc.Summary.Excluded = append(s.doc.Summary.Excluded, ev.Candidates...)
	case stv.ProvisionUsed:
		if s.current.Note != "" {
			s.current.Note += "; "
		}
		s.current.Note += ev.Text
	case stv.RoundComplete:
		s.doc.Rounds = append(s.doc.Rounds, s.current)
		s.current = nil
	case stv.Finished:
		s.doc.Parameters.FinishedAt = now()
	}
}

func snapshotOf(a *stv.CandidateAggregates) *RoundSnapshot {
	return &RoundSnapshot{
		Votes:           a.Votes,
		Papers:          a.Papers,
		ExhaustedVotes:  a.ExhaustedVotes,
		ExhaustedPapers: a.ExhaustedPapers,
		GainLossVotes:   a.GainLossVotes,
		GainLossPapers:  a.GainLossPapers,
	}
}

// now is a seam so tests can stub the clock; production always calls
// time.Now.
var now = time.Now

// Document returns the accumulated document. Safe to call once the
// engine has finished.
func (s *JSONSink) Document() Document { return s.doc }

// WriteTo serializes the document as indented JSON.
func (s *JSONSink) WriteTo(w io.Writer) error {
	data, err := s.marshaler.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
