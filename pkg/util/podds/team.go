package podds

import (
	"fmt"
	"sort"
	"strings"
)

// TeamIndex maps case-folded team names to the spelling used in the dataset.
// It is built once per dataset and never modified afterwards.
type TeamIndex struct {
	canonical map[string]string
	teams     []string
}

// NewTeamIndex collects every home and away team name from the records
func NewTeamIndex(records []MatchRecord) *TeamIndex {
	canonical := make(map[string]string)
	for _, r := range records {
		for _, name := range []string{r.HomeTeam, r.AwayTeam} {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := teamKey(name)
			// first spelling seen wins
			if _, ok := canonical[key]; !ok {
				canonical[key] = name
			}
		}
	}

	teams := make([]string, 0, len(canonical))
	for _, name := range canonical {
		teams = append(teams, name)
	}
	sort.Strings(teams)

	return &TeamIndex{canonical: canonical, teams: teams}
}

// Resolve returns the dataset spelling of name, ignoring case and surrounding space
func (ti *TeamIndex) Resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: no team name given", ErrUnknownTeam)
	}
	if c, ok := ti.canonical[teamKey(trimmed)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTeam, trimmed)
}

// Teams returns the sorted canonical team names
func (ti *TeamIndex) Teams() []string {
	ret := make([]string, len(ti.teams))
	copy(ret, ti.teams)
	return ret
}

// Len returns the number of distinct teams
func (ti *TeamIndex) Len() int {
	return len(ti.teams)
}

func teamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
