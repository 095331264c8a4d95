package podds

import (
	"fmt"
)

// Venue says whether a team played at home or away
type Venue string

const (
	Home Venue = "home"
	Away Venue = "away"
)

// TeamForm is the average goals scored and conceded by a team at one venue.
// Derived on demand from match records and never persisted.
type TeamForm struct {
	Team              string  `json:"team"`
	Venue             Venue   `json:"venue"`
	Matches           int     `json:"matches"`
	GoalsScored       int     `json:"goalsScored"`
	GoalsConceded     int     `json:"goalsConceded"`
	GoalsScoredMean   float64 `json:"goalsScoredMean"`
	GoalsConcededMean float64 `json:"goalsConcededMean"`
}

// CalculateTeamForm averages the goals a team scored and conceded over the
// records where it played at the given venue.
// Returns ErrInsufficientData when the team has no such matches.
func CalculateTeamForm(records []MatchRecord, team string, venue Venue) (*TeamForm, error) {
	if venue != Home && venue != Away {
		return nil, fmt.Errorf("unknown venue %q", venue)
	}

	key := teamKey(team)
	form := &TeamForm{Team: team, Venue: venue}

	for _, r := range records {
		switch {
		case venue == Home && teamKey(r.HomeTeam) == key:
			form.GoalsScored += r.HomeGoals
			form.GoalsConceded += r.AwayGoals
		case venue == Away && teamKey(r.AwayTeam) == key:
			form.GoalsScored += r.AwayGoals
			form.GoalsConceded += r.HomeGoals
		default:
			continue
		}
		form.Matches++
	}

	if form.Matches == 0 {
		return nil, fmt.Errorf("%w: %s has no %s matches", ErrInsufficientData, team, venue)
	}

	form.GoalsScoredMean = float64(form.GoalsScored) / float64(form.Matches)
	form.GoalsConcededMean = float64(form.GoalsConceded) / float64(form.Matches)
	return form, nil
}

// NewMatchModelInput derives the expected goal rates for a fixture: the home
// side's mean goals scored at home and the away side's mean goals scored away.
func NewMatchModelInput(homeForm, awayForm *TeamForm) (MatchModelInput, error) {
	if homeForm == nil || awayForm == nil {
		return MatchModelInput{}, fmt.Errorf("%w: both teams need form data", ErrInsufficientData)
	}
	if homeForm.Venue != Home || awayForm.Venue != Away {
		return MatchModelInput{}, fmt.Errorf("home form must be a home venue form and away form an away venue form")
	}
	in := MatchModelInput{
		HomeExpectedGoals: homeForm.GoalsScoredMean,
		AwayExpectedGoals: awayForm.GoalsScoredMean,
	}
	return in, in.Validate()
}
