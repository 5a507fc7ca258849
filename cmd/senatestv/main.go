// Command senatestv runs an Australian Senate STV count, or a batch of
// them, from a roster of formal preferences and a JSON config naming the
// counts to run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joeycumines/logiface"
	"github.com/pkg/errors"

	"github.com/ausec/senatestv/internal/config"
	"github.com/ausec/senatestv/internal/ingest"
	"github.com/ausec/senatestv/internal/report"
	"github.com/ausec/senatestv/internal/telemetry"
	"github.com/ausec/senatestv/stv"
)

type cli struct {
	Quiet        bool   `help:"Suppress everything below a warning." short:"q"`
	Verbose      bool   `help:"Emit debug-level progress lines." short:"v"`
	MaxBallots   int    `name:"max-ballots" help:"Truncate each roster to at most N ballots before aggregation." placeholder:"N"`
	Only         string `help:"Run only the count with this short name." placeholder:"SHORTNAME"`
	OnlyVerified bool   `name:"only-verified" help:"Run only counts with a reference result, and fail if the result disagrees."`

	Config string `arg:"" type:"existingfile" help:"Path to the orchestrator config JSON."`
	OutDir string `arg:"" type:"path" help:"Directory result documents are written to."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("senatestv"),
		kong.Description("Counts one or more Australian Senate elections under the Single Transferable Vote provisions of the Commonwealth Electoral Act 1918."),
	)
	kctx.FatalIfErrorf(run(c))
}

func run(c cli) error {
	file, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	logger := telemetry.NewLogger(slog.NewTextHandler(os.Stderr, nil), logLevel(c))

	var failed bool
	for _, count := range file.Counts {
		if c.Only != "" && count.ShortName != c.Only {
			continue
		}
		if c.OnlyVerified && count.ReferenceResultPath == "" {
			continue
		}
		if err := runCount(context.Background(), c, count); err != nil {
			logger.Err().Str("count", count.ShortName).Err(err).Log("count failed")
			failed = true
		}
	}
	if failed {
		return errors.New("one or more counts failed")
	}
	return nil
}

func logLevel(c cli) logiface.Level {
	switch {
	case c.Quiet:
		return logiface.LevelWarning
	case c.Verbose:
		return logiface.LevelDebug
	default:
		return logiface.LevelNotice
	}
}

func runCount(ctx context.Context, c cli, count config.CountDef) error {
	f, err := os.Open(count.RosterPath)
	if err != nil {
		return errors.Wrapf(err, "opening roster for %q", count.ShortName)
	}
	defer f.Close()

	papers, err := ingest.ParseFormalPreferences(f, count.CandidateIDs())
	if err != nil {
		return errors.Wrapf(err, "parsing roster for %q", count.ShortName)
	}
	papers = ingest.Truncate(papers, c.MaxBallots)
	papersForCount := ingest.Aggregate(papers)

	jsonSink := report.NewJSONSink(count.ReportCandidates(), count.Parties(), nil)
	logHandler := slog.NewTextHandler(os.Stderr, nil)
	logSink := telemetry.NewLogSink(telemetry.NewLogger(logHandler, logLevel(c)))
	sink := telemetry.MultiSink{Sinks: []stv.Sink{jsonSink, logSink}}

	engine, err := stv.NewEngine(stv.Config{
		Vacancies:             count.Vacancies,
		PapersForCount:        papersForCount,
		CandidateIDs:          count.CandidateIDs(),
		Order:                 count.Ordering(),
		DisableBulkExclusions: count.DisableBulkExclusions,
		Callbacks:             selectCallbacks(c),
		Sink:                  sink,
	})
	if err != nil {
		return errors.Wrapf(err, "configuring engine for %q", count.ShortName)
	}
	if err := engine.Run(ctx); err != nil {
		return errors.Wrapf(err, "running count %q", count.ShortName)
	}

	outPath := filepath.Join(c.OutDir, count.ShortName+".json")
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "creating result file for %q", count.ShortName)
	}
	defer out.Close()
	if err := jsonSink.WriteTo(out); err != nil {
		return errors.Wrapf(err, "writing result file for %q", count.ShortName)
	}

	if count.ReferenceResultPath != "" {
		if err := verifyAgainstReference(jsonSink.Document(), count.ReferenceResultPath); err != nil {
			return errors.Wrapf(err, "verifying %q", count.ShortName)
		}
	}
	return nil
}

// selectCallbacks uses the deterministic callback set for --only-verified
// runs, since verification needs reproducible output, and the
// interactive stdin-prompting set otherwise. This binds nothing inside
// the engine, which never performs I/O itself (spec.md 9); it only
// chooses which caller-supplied callback the orchestrator hands it.
func selectCallbacks(c cli) stv.Callbacks {
	if c.OnlyVerified {
		return deterministicCallbacks()
	}
	return interactiveCallbacks(os.Stdin, os.Stdout)
}

// referenceResult is the minimal shape a reference log must carry to be
// diffed against a produced summary: the elected candidates in order,
// and the excluded candidates in order.
type referenceResult struct {
	Summary struct {
		Elected []struct {
			CandidateID string `json:"candidate_id"`
		} `json:"elected"`
		Excluded []string `json:"excluded"`
	} `json:"summary"`
}

func verifyAgainstReference(doc report.Document, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening reference result")
	}
	defer f.Close()

	var ref referenceResult
	if err := json.NewDecoder(f).Decode(&ref); err != nil {
		return errors.Wrap(err, "decoding reference result")
	}

	if len(ref.Summary.Elected) != len(doc.Summary.Elected) {
		return fmt.Errorf("elected count mismatch: reference has %d, result has %d", len(ref.Summary.Elected), len(doc.Summary.Elected))
	}
	for i, want := range ref.Summary.Elected {
		got := string(doc.Summary.Elected[i].CandidateID)
		if want.CandidateID != got {
			return fmt.Errorf("elected[%d] mismatch: reference %q, result %q", i, want.CandidateID, got)
		}
	}
	if len(ref.Summary.Excluded) != len(doc.Summary.Excluded) {
		return fmt.Errorf("excluded count mismatch: reference has %d, result has %d", len(ref.Summary.Excluded), len(doc.Summary.Excluded))
	}
	for i, want := range ref.Summary.Excluded {
		got := string(doc.Summary.Excluded[i])
		if want != got {
			return fmt.Errorf("excluded[%d] mismatch: reference %q, result %q", i, want, got)
		}
	}
	return nil
}
