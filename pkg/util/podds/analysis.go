package podds

import (
	"fmt"

	"github.com/richard-senior/podds/internal/logger"
)

// FavouriteUndefined labels the favourite and underdog when both teams have equal expected goals
const FavouriteUndefined = "undefined (equal teams)"

// Analyser runs match analyses over one loaded dataset.
// The records and team index are fixed when the analyser is built.
type Analyser struct {
	records []MatchRecord
	index   *TeamIndex
}

// MatchRequest is a fixture to analyse plus any market odds the user entered.
// Quotes are raw text keyed by market; missing or blank entries are allowed.
type MatchRequest struct {
	HomeTeam string            `json:"homeTeam"`
	AwayTeam string            `json:"awayTeam"`
	Quotes   map[Market]string `json:"quotes,omitempty"`
}

// TeamFormReport holds both venue forms for one team.
// A venue with no matches carries the insufficient data message instead of a form.
type TeamFormReport struct {
	Team      string    `json:"team"`
	Home      *TeamForm `json:"home,omitempty"`
	HomeError string    `json:"homeError,omitempty"`
	Away      *TeamForm `json:"away,omitempty"`
	AwayError string    `json:"awayError,omitempty"`
}

// Percentages are the headline model probabilities as percentages
type Percentages struct {
	UnderGoals     float64 `json:"underGoals"`
	OverGoals      float64 `json:"overGoals"`
	SecondaryOver  float64 `json:"secondaryOver"`
	HomeWin        float64 `json:"homeWin"`
	Draw           float64 `json:"draw"`
	AwayWin        float64 `json:"awayWin"`
	BothTeamsScore float64 `json:"bothTeamsScore"`
}

// MatchAnalysis is the full result for one fixture
type MatchAnalysis struct {
	HomeTeam    string             `json:"homeTeam"`
	AwayTeam    string             `json:"awayTeam"`
	HomeForm    *TeamForm          `json:"homeForm"`
	AwayForm    *TeamForm          `json:"awayForm"`
	Model       *PoissonResult     `json:"model"`
	Percentages Percentages        `json:"percentages"`
	Favourite   string             `json:"favourite"`
	Underdog    string             `json:"underdog"`
	Markets     []MarketAssessment `json:"markets"`
}

// NewAnalyser indexes the records. The slice is copied.
func NewAnalyser(records []MatchRecord) *Analyser {
	rs := make([]MatchRecord, len(records))
	copy(rs, records)
	return &Analyser{records: rs, index: NewTeamIndex(rs)}
}

// Teams returns the sorted canonical team names in the dataset
func (a *Analyser) Teams() []string {
	return a.index.Teams()
}

// Len returns the number of records in the dataset
func (a *Analyser) Len() int {
	return len(a.records)
}

// TeamForm returns the home and away form of a team.
// Only an unknown team is an error; an empty venue is reported on the result.
func (a *Analyser) TeamForm(name string) (*TeamFormReport, error) {
	team, err := a.index.Resolve(name)
	if err != nil {
		return nil, err
	}
	report := &TeamFormReport{Team: team}
	if report.Home, err = CalculateTeamForm(a.records, team, Home); err != nil {
		report.HomeError = err.Error()
	}
	if report.Away, err = CalculateTeamForm(a.records, team, Away); err != nil {
		report.AwayError = err.Error()
	}
	return report, nil
}

// Analyse resolves both teams, aggregates their form and prices every market.
// Unknown teams and missing form stop the analysis. Problems with a single
// market (bad quote, zero probability) are recorded on that market only.
func (a *Analyser) Analyse(req MatchRequest) (*MatchAnalysis, error) {
	home, err := a.index.Resolve(req.HomeTeam)
	if err != nil {
		return nil, fmt.Errorf("home team: %w", err)
	}
	away, err := a.index.Resolve(req.AwayTeam)
	if err != nil {
		return nil, fmt.Errorf("away team: %w", err)
	}
	if home == away {
		return nil, fmt.Errorf("%s cannot play itself", home)
	}

	homeForm, err := CalculateTeamForm(a.records, home, Home)
	if err != nil {
		return nil, err
	}
	awayForm, err := CalculateTeamForm(a.records, away, Away)
	if err != nil {
		return nil, err
	}

	input, err := NewMatchModelInput(homeForm, awayForm)
	if err != nil {
		return nil, err
	}
	model, err := PredictMatch(input)
	if err != nil {
		return nil, err
	}

	logger.Debug("Analysed", home, "v", away, "lambda", input.HomeExpectedGoals, input.AwayExpectedGoals)

	ret := &MatchAnalysis{
		HomeTeam: home,
		AwayTeam: away,
		HomeForm: homeForm,
		AwayForm: awayForm,
		Model:    model,
		Percentages: Percentages{
			UnderGoals:     RoundPercent(model.UnderGoalsProbability),
			OverGoals:      RoundPercent(model.OverGoalsProbability),
			SecondaryOver:  RoundPercent(model.SecondaryOverProbability),
			HomeWin:        RoundPercent(model.Outcome.HomeWin),
			Draw:           RoundPercent(model.Outcome.Draw),
			AwayWin:        RoundPercent(model.Outcome.AwayWin),
			BothTeamsScore: RoundPercent(model.BothTeamsScore),
		},
	}

	switch model.Favourite.Side {
	case SideHome:
		ret.Favourite, ret.Underdog = home, away
	case SideAway:
		ret.Favourite, ret.Underdog = away, home
	default:
		ret.Favourite, ret.Underdog = FavouriteUndefined, FavouriteUndefined
	}

	quote := func(m Market) string {
		if req.Quotes == nil {
			return ""
		}
		return req.Quotes[m]
	}

	ret.Markets = []MarketAssessment{
		AssessMarket(MarketOverGoals, MarketOverGoals.Label(), model.OverGoalsProbability, quote(MarketOverGoals)),
		AssessMarket(MarketBackFavourite, ret.Favourite, model.Favourite.FavouriteProbability, quote(MarketBackFavourite)),
		AssessMarket(MarketLayUnderdog, ret.Underdog, model.Favourite.UnderdogProbability, quote(MarketLayUnderdog)),
		AssessMarket(MarketBothTeamsScore, "Yes", model.BothTeamsScore, quote(MarketBothTeamsScore)),
	}
	return ret, nil
}
