package neighborhood

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// byName exposes neighborhood names to the fuzzy matcher.
type byName []Neighborhood

func (b byName) String(i int) string { return b[i].Name }
func (b byName) Len() int            { return len(b) }

// rank filters candidates by query and orders them by match score, then
// case-insensitive name. A blank query matches everything.
func rank(query string, candidates []Neighborhood, limit int) []Neighborhood {
	query = strings.TrimSpace(query)

	var out []Neighborhood
	if query == "" {
		out = append([]Neighborhood(nil), candidates...)
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	} else {
		matches := fuzzy.FindFrom(query, byName(candidates))
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Score != matches[j].Score {
				return matches[i].Score > matches[j].Score
			}
			return strings.ToLower(matches[i].Str) < strings.ToLower(matches[j].Str)
		})
		out = make([]Neighborhood, len(matches))
		for i, m := range matches {
			out[i] = candidates[m.Index]
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
