// Package ingest parses the AEC's formal-preferences CSV and aggregates
// it into the multiset the counting engine expects.
package ingest

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausec/senatestv/stv"
)

// FormalPaper is one formal ballot paper: its preference sequence in
// ranked order, first preference first. Empty positions and ties are
// already resolved by the time a FormalPaper exists.
type FormalPaper struct {
	Preferences []stv.CandidateID
}

var header2016 = []string{"ElectorateNm", "VoteCollectionPointNm", "VoteCollectionPointId", "BatchNo", "PaperNo", "Preferences"}

const fixedColumnCount = 5

// ParseFormalPreferences reads a formal-preferences CSV and returns the
// papers it contains, in file order. candidateOrder gives the
// CandidateID assigned to each ballot position, left to right, which is
// how both the 2016 single-column layout (preference numbers listed
// positionally within one field) and the 2019 one-column-per-candidate
// layout identify which candidate a preference number belongs to.
//
// Within a row, "*" and "/" are normalized to preference 1; an empty
// cell means no preference was marked at that position. Rows with no
// first preference at all (informal papers that slipped into a formal
// extract) are dropped rather than forwarded to the ledger, per
// spec.md 4.3.
func ParseFormalPreferences(r io.Reader, candidateOrder []stv.CandidateID) ([]FormalPaper, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}

	singleColumn := len(header) == len(header2016)
	if singleColumn {
		for i, want := range header2016 {
			if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
				singleColumn = false
				break
			}
		}
	}

	var parseRow func([]string) ([]stv.CandidateID, error)
	if singleColumn {
		parseRow = func(row []string) ([]stv.CandidateID, error) {
			return parseSingleColumnRow(row[fixedColumnCount], candidateOrder)
		}
	} else {
		if len(header)-fixedColumnCount != len(candidateOrder) {
			return nil, errors.Wrapf(stv.ErrInputError, "header has %d candidate columns, candidate order has %d entries", len(header)-fixedColumnCount, len(candidateOrder))
		}
		parseRow = func(row []string) ([]stv.CandidateID, error) {
			return parseMultiColumnRow(row[fixedColumnCount:], candidateOrder)
		}
	}

	var papers []FormalPaper
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv row")
		}
		if len(row) < fixedColumnCount+1 {
			continue
		}
		if isDividerRow(row) {
			continue
		}
		prefs, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		if len(prefs) == 0 {
			continue
		}
		papers = append(papers, FormalPaper{Preferences: prefs})
	}
	return papers, nil
}

// isDividerRow recognizes the AEC's cosmetic "-----" separator line that
// sometimes follows the header.
func isDividerRow(row []string) bool {
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed != "" && strings.Trim(trimmed, "-") != "" {
			return false
		}
	}
	return true
}

type rankedPosition struct {
	rank      int
	candidate stv.CandidateID
}

func parseSingleColumnRow(field string, candidateOrder []stv.CandidateID) ([]stv.CandidateID, error) {
	fields := strings.Split(field, ",")
	if len(fields) != len(candidateOrder) {
		return nil, errors.Wrapf(stv.ErrInputError, "preferences field has %d positions, candidate order has %d entries", len(fields), len(candidateOrder))
	}
	return rankPositions(fields, candidateOrder)
}

func parseMultiColumnRow(fields []string, candidateOrder []stv.CandidateID) ([]stv.CandidateID, error) {
	return rankPositions(fields, candidateOrder)
}

func rankPositions(fields []string, candidateOrder []stv.CandidateID) ([]stv.CandidateID, error) {
	var ranked []rankedPosition
	for i, cell := range fields {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		rank, err := normalizeRank(cell)
		if err != nil {
			return nil, errors.Wrapf(stv.ErrInputError, "position %d: %s", i, err)
		}
		ranked = append(ranked, rankedPosition{rank: rank, candidate: candidateOrder[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rank < ranked[j].rank })
	out := make([]stv.CandidateID, len(ranked))
	for i, r := range ranked {
		out[i] = r.candidate
	}
	return out, nil
}

func normalizeRank(cell string) (int, error) {
	if cell == "*" || cell == "/" {
		return 1, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid preference value %q", cell)
	}
	return n, nil
}

// Truncate returns the first max papers, preserving order. It exists for
// --max-ballots, which truncates the roster before aggregation so local
// iteration over a full state file stays fast. A non-positive max
// returns papers unchanged.
func Truncate(papers []FormalPaper, max int) []FormalPaper {
	if max <= 0 || len(papers) <= max {
		return papers
	}
	return papers[:max]
}

// Aggregate groups identical preference sequences into the multiset the
// engine expects, satisfying spec.md 3's aggregation contract: presenting
// the same sequence once with multiplicity n produces an identical count
// to presenting it n times.
func Aggregate(papers []FormalPaper) stv.PapersForCount {
	type group struct {
		preferences []stv.CandidateID
		count       int64
	}
	byKey := make(map[string]*group)
	var order []string
	for _, p := range papers {
		key := sequenceKey(p.Preferences)
		g, ok := byKey[key]
		if !ok {
			g = &group{preferences: p.Preferences}
			byKey[key] = g
			order = append(order, key)
		}
		g.count++
	}
	entries := make([]stv.PapersForCountEntry, 0, len(order))
	for _, key := range order {
		g := byKey[key]
		entries = append(entries, stv.PapersForCountEntry{Preferences: g.preferences, Multiplicity: g.count})
	}
	return stv.PapersForCount{Entries: entries}
}

func sequenceKey(prefs []stv.CandidateID) string {
	parts := make([]string, len(prefs))
	for i, cid := range prefs {
		parts[i] = string(cid)
	}
	return strings.Join(parts, "\x1f")
}
