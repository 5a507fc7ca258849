// Package telemetry forwards a human-readable line per engine event to a
// structured logger, for attended (--verbose) runs. It is additional to,
// and distinct from, the engine's own typed event protocol: the engine
// never imports this package.
package telemetry

import (
	"log/slog"

	"github.com/joeycumines/logiface"
	slogiface "github.com/joeycumines/logiface-slog"

	"github.com/ausec/senatestv/stv"
)

// NewLogger builds a logiface logger over handler, following
// logiface-slog's logiface.New[*Event](slogiface.NewLogger(handler,
// opts...)) construction pattern. minLevel gates what gets written:
// --quiet callers pass logiface.LevelWarning, --verbose callers pass
// logiface.LevelDebug, everyone else gets logiface.LevelNotice.
func NewLogger(handler slog.Handler, minLevel logiface.Level) *logiface.Logger[*slogiface.Event] {
	return logiface.New[*slogiface.Event](slogiface.NewLogger(handler, slogiface.WithLevel(minLevel)))
}

// LogSink implements stv.Sink by writing one structured line per event.
type LogSink struct {
	logger *logiface.Logger[*slogiface.Event]
	round  int
}

// NewLogSink wraps logger as a stv.Sink.
func NewLogSink(logger *logiface.Logger[*slogiface.Event]) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements stv.Sink.
func (s *LogSink) Emit(e stv.Event) {
	switch ev := e.(type) {
	case stv.Started:
		s.logger.Notice().Int("vacancies", ev.Vacancies).Int64("total_papers", ev.TotalPapers).Int64("quota", ev.Quota).Log("count started")
	case stv.RoundBegin:
		s.round = ev.RoundNumber
		s.logger.Info().Int("round", ev.RoundNumber).Log("round begin")
	case stv.ElectionDistributionPerformed:
		s.logger.Debug().Int("round", s.round).Str("candidate", string(ev.CandidateID)).Str("transfer_value", ev.TransferValue.String()).Log("election distribution")
	case stv.ExclusionDistributionPerformed:
		s.logger.Debug().Int("round", s.round).Int("candidates", len(ev.Candidates)).Str("transfer_value", ev.TransferValue.String()).Log("exclusion distribution")
	case stv.CandidateAggregatesEvent:
		s.logger.Debug().Int("round", s.round).Int64("exhausted_papers", ev.Aggregates.ExhaustedPapers).Int64("exhausted_votes", ev.Aggregates.ExhaustedVotes).Log("aggregates")
	case stv.CandidateElected:
		b := s.logger.Notice().Int("round", s.round).Str("candidate", string(ev.CandidateID)).Int("order", ev.Order)
		if ev.TransferValue != nil {
			b = b.Str("transfer_value", ev.TransferValue.String())
		}
		b.Log("candidate elected")
	case stv.CandidatesExcluded:
		s.logger.Notice().Int("round", s.round).Int("candidates", len(ev.Candidates)).Str("reason", string(ev.Reason)).Log("candidates excluded")
	case stv.ProvisionUsed:
		s.logger.Info().Int("round", s.round).Str("provision", ev.Text).Log("provision used")
	case stv.RoundComplete:
		s.logger.Debug().Int("round", ev.RoundNumber).Log("round complete")
	case stv.Finished:
		s.logger.Notice().Log("count finished")
	}
}

// MultiSink fans a single event out to every wrapped Sink, in order.
type MultiSink struct {
	Sinks []stv.Sink
}

// Emit implements stv.Sink.
func (m MultiSink) Emit(e stv.Event) {
	for _, sink := range m.Sinks {
		sink.Emit(e)
	}
}
