package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausec/senatestv/internal/jsonfast"
	"github.com/ausec/senatestv/stv"
)

func withFixedClock(t *testing.T, at time.Time) {
	t.Helper()
	original := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = original })
}

func TestJSONSink_AccumulatesAFullRound(t *testing.T) {
	withFixedClock(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	sink := NewJSONSink(
		[]CandidateInfo{{ID: "A", Name: "Alice", Party: "X"}, {ID: "B", Name: "Bob", Party: "Y"}},
		[]string{"X", "Y"},
		nil,
	)

	sink.Emit(stv.Started{Vacancies: 1, TotalPapers: 100, Quota: 51})
	sink.Emit(stv.RoundBegin{RoundNumber: 1})
	excess := int64(9)
	papers := int64(60)
	tv := stv.NewRatio(9, 60)
	sink.Emit(stv.CandidateElected{CandidateID: "A", Order: 1, ExcessVotes: &excess, PaperCount: &papers, TransferValue: &tv})
	aggregates := &stv.CandidateAggregates{RoundNumber: 1, Votes: map[stv.CandidateID]int64{"A": 60, "B": 40}}
	sink.Emit(stv.CandidateAggregatesEvent{Aggregates: aggregates})
	sink.Emit(stv.RoundComplete{RoundNumber: 1})
	sink.Emit(stv.Finished{})

	doc := sink.Document()
	require.NotEmpty(t, doc.Parameters.RunID)
	assert.Equal(t, 1, doc.Parameters.Vacancies)
	assert.Equal(t, int64(51), doc.Parameters.Quota)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), doc.Parameters.FinishedAt)

	require.Len(t, doc.Rounds, 1)
	require.Len(t, doc.Rounds[0].Elected, 1)
	assert.Equal(t, stv.CandidateID("A"), doc.Rounds[0].Elected[0].CandidateID)
	require.NotNil(t, doc.Rounds[0].Aggregates)
	assert.Equal(t, int64(60), doc.Rounds[0].Aggregates.Votes["A"])

	require.Len(t, doc.Summary.Elected, 1)
	assert.Equal(t, stv.CandidateID("A"), doc.Summary.Elected[0].CandidateID)

	var buf bytes.Buffer
	require.NoError(t, sink.WriteTo(&buf))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "parameters")
	assert.Contains(t, decoded, "rounds")
	assert.Contains(t, decoded, "summary")
}

func TestJSONSink_RecordsExclusionAndProvision(t *testing.T) {
	sink := NewJSONSink(nil, nil, jsonfast.Std)

	sink.Emit(stv.Started{Vacancies: 1, TotalPapers: 10, Quota: 6})
	sink.Emit(stv.RoundBegin{RoundNumber: 1})
	minVotes := int64(1)
	sink.Emit(stv.CandidatesExcluded{
		Candidates:     []stv.CandidateID{"C"},
		TransferValues: []stv.Value{stv.One()},
		Reason:         stv.ExclusionReasonSingle,
		MinVotes:       &minVotes,
	})
	sink.Emit(stv.ProvisionUsed{Text: "s.273(18)"})
	sink.Emit(stv.RoundComplete{RoundNumber: 1})

	doc := sink.Document()
	require.Len(t, doc.Rounds, 1)
	require.NotNil(t, doc.Rounds[0].Exclusion)
	assert.Equal(t, []stv.CandidateID{"C"}, doc.Rounds[0].Exclusion.Candidates)
	assert.Contains(t, doc.Rounds[0].Note, "273(18)")
	assert.Equal(t, []stv.CandidateID{"C"}, doc.Summary.Excluded)
}
