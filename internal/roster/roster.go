package roster

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sreshtalluri/polyratings-data-collection/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Entry is one row of the canonical name-to-id mapping.
type Entry struct {
	FullName      string
	FirstName     string
	LastName      string
	Id            string
	Department    string
	OverallRating float64
	NumEvals      int64
}

// Load reads the canonical professor_name_to_id.csv.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 7 {
			return nil, fmt.Errorf("%s: expected 7 columns, got %d", path, len(row))
		}
		rating, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: parse overallRating: %w", path, err)
		}
		evals, err := strconv.ParseInt(row[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: parse numEvals: %w", path, err)
		}
		entries = append(entries, Entry{
			FullName:      row[0],
			FirstName:     row[1],
			LastName:      row[2],
			Id:            row[3],
			Department:    row[4],
			OverallRating: rating,
			NumEvals:      evals,
		})
	}
	return entries, nil
}

// Match is a roster entry ranked against a query.
type Match struct {
	Entry       Entry
	Correlation float64
}

// Search ranks entries by Jaro-Winkler similarity of the normalized full
// name to the query and returns the top `limit` matches.
func Search(entries []Entry, query string, limit int) []Match {
	normalizedQuery := textutil.NormalizeName(query)

	matches := make([]Match, len(entries))
	for i, e := range entries {
		matches[i] = Match{
			Entry:       e,
			Correlation: matchr.JaroWinkler(normalizedQuery, textutil.NormalizeName(e.FullName), false),
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Correlation > matches[b].Correlation
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
