// Package config defines the orchestrator's on-disk configuration: the
// list of per-state counts a single invocation may run.
package config

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/ausec/senatestv/internal/report"
	"github.com/ausec/senatestv/stv"
)

// CandidateDef is one candidate's identity, reporting metadata, and
// tie-break ordering key (spec.md 6's candidate_order_fn, made concrete
// as a per-candidate integer set once in the config rather than supplied
// as a function at runtime).
type CandidateDef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Order int    `json:"order"`
}

// CountDef is one state or territory's count.
type CountDef struct {
	ShortName             string         `json:"short_name"`
	RosterPath            string         `json:"roster_path"`
	Vacancies             int            `json:"vacancies"`
	Candidates            []CandidateDef `json:"candidates"`
	DisableBulkExclusions bool           `json:"disable_bulk_exclusions"`
	ReferenceResultPath   string         `json:"reference_result_path,omitempty"`
}

// File is the complete config named on the command line.
type File struct {
	Counts []CountDef `json:"counts"`
}

// Load reads and parses a config file from path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(stv.ErrInputError, "opening config %q: %s", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and parses a config document from r.
func Parse(r io.Reader) (*File, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	for _, count := range file.Counts {
		if count.ShortName == "" {
			return nil, errors.Wrap(stv.ErrInputError, "count with empty short_name")
		}
		if count.Vacancies <= 0 {
			return nil, errors.Wrapf(stv.ErrInputError, "count %q: vacancies must be positive", count.ShortName)
		}
		if len(count.Candidates) == 0 {
			return nil, errors.Wrapf(stv.ErrInputError, "count %q: no candidates", count.ShortName)
		}
	}
	return &file, nil
}

// Select returns the CountDef with the given short name, or false if
// none matches.
func (f *File) Select(shortName string) (CountDef, bool) {
	for _, count := range f.Counts {
		if count.ShortName == shortName {
			return count, true
		}
	}
	return CountDef{}, false
}

// CandidateIDs returns the count's candidates as stv.CandidateID, in the
// order they were declared.
func (c CountDef) CandidateIDs() []stv.CandidateID {
	out := make([]stv.CandidateID, len(c.Candidates))
	for i, cand := range c.Candidates {
		out[i] = stv.CandidateID(cand.ID)
	}
	return out
}

// Ordering returns a stv.Ordering keyed on each candidate's declared
// Order field.
func (c CountDef) Ordering() stv.Ordering {
	byID := make(map[stv.CandidateID]int, len(c.Candidates))
	for _, cand := range c.Candidates {
		byID[stv.CandidateID(cand.ID)] = cand.Order
	}
	return func(cid stv.CandidateID) int { return byID[cid] }
}

// ReportCandidates converts the count's candidate metadata into the
// shape report.JSONSink expects.
func (c CountDef) ReportCandidates() []report.CandidateInfo {
	out := make([]report.CandidateInfo, len(c.Candidates))
	for i, cand := range c.Candidates {
		out[i] = report.CandidateInfo{ID: stv.CandidateID(cand.ID), Name: cand.Name, Party: cand.Party}
	}
	return out
}

// Parties returns the distinct party names across the count's
// candidates, sorted, for report.Document's top-level parties list.
func (c CountDef) Parties() []string {
	seen := make(map[string]bool)
	var parties []string
	for _, cand := range c.Candidates {
		if cand.Party == "" || seen[cand.Party] {
			continue
		}
		seen[cand.Party] = true
		parties = append(parties, cand.Party)
	}
	sort.Strings(parties)
	return parties
}
