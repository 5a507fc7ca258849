package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausec/senatestv/stv"
)

func TestLogSink_WritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, nil)
	logger := NewLogger(handler, logiface.LevelDebug)
	sink := NewLogSink(logger)

	sink.Emit(stv.Started{Vacancies: 1, TotalPapers: 100, Quota: 51})
	sink.Emit(stv.RoundBegin{RoundNumber: 1})
	order := 1
	sink.Emit(stv.CandidateElected{CandidateID: "A", Order: order})
	sink.Emit(stv.Finished{})

	output := buf.String()
	require.NotEmpty(t, output)
	assert.True(t, strings.Contains(output, "count started"))
	assert.True(t, strings.Contains(output, "candidate elected"))
	assert.True(t, strings.Contains(output, "count finished"))
}

type countingSink struct{ n int }

func (c *countingSink) Emit(stv.Event) { c.n++ }

func TestMultiSink_FansOutToEverySink(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	multi := MultiSink{Sinks: []stv.Sink{a, b}}
	multi.Emit(stv.Finished{})
	multi.Emit(stv.RoundBegin{RoundNumber: 1})
	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}
