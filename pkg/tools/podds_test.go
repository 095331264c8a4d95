package tools

import (
	"testing"

	"github.com/richard-senior/podds/pkg/util/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTools(t *testing.T) *PoddsTools {
	t.Helper()
	store, err := podds.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewPoddsTools(store)
}

func record(t *testing.T, p *PoddsTools, competition, home, away string, hg, ag int, date string) {
	t.Helper()
	_, err := p.HandleRecordResult(map[string]any{
		"competition": competition,
		"home_team":   home,
		"away_team":   away,
		"home_goals":  float64(hg),
		"away_goals":  float64(ag),
		"date":        date,
	})
	require.NoError(t, err)
}

func seed(t *testing.T) *PoddsTools {
	p := newTestTools(t)
	record(t, p, "Premier League", "Arsenal", "Chelsea", 2, 1, "2024-08-10")
	record(t, p, "Premier League", "Arsenal", "Spurs", 1, 1, "2024-08-17")
	record(t, p, "Premier League", "Chelsea", "Arsenal", 0, 3, "2024-08-24")
	record(t, p, "Premier League", "Chelsea", "Spurs", 2, 2, "2024-08-31")
	record(t, p, "Premier League", "Spurs", "Arsenal", 1, 0, "2024-09-07")
	record(t, p, "Premier League", "Spurs", "Chelsea", 3, 1, "2024-09-14")
	record(t, p, "Premier League", "Arsenal", "Chelsea", 0, 0, "2024-09-21")
	record(t, p, "FA Cup", "Leeds", "Arsenal", 0, 4, "2025-01-11")
	return p
}

func TestRegistrations(t *testing.T) {
	p := newTestTools(t)
	names := []string{}
	for _, r := range p.Registrations() {
		require.NotNil(t, r.Handler)
		names = append(names, r.Tool.Name)
		assert.Equal(t, "object", r.Tool.InputSchema.Type)
	}
	assert.Equal(t, []string{"podds_analyse_match", "podds_team_form", "podds_list_teams", "podds_record_result"}, names)
	assert.Equal(t, "podds_team_form", StripToolPrefix("mcp___podds_team_form"))
	assert.Equal(t, "podds_team_form", StripToolPrefix("podds_team_form"))
}

func TestHandleAnalyseMatch(t *testing.T) {
	p := seed(t)

	result, err := p.HandleAnalyseMatch(map[string]any{
		"home_team":            "arsenal",
		"away_team":            "spurs",
		"competition":          "Premier League",
		"over_odd":             2.4,
		"back_favourite_odd":   "1,50",
		"lay_underdog_odd":     "rubbish",
		"both_teams_score_odd": nil,
	})
	require.NoError(t, err)

	analysis, ok := result.(*podds.MatchAnalysis)
	require.True(t, ok)
	assert.Equal(t, "Arsenal", analysis.HomeTeam)
	assert.Equal(t, "Spurs", analysis.Favourite)
	assert.InDelta(t, 0.4562, analysis.Model.OverGoalsProbability, 1e-4)

	verdicts := map[podds.Market]podds.Verdict{}
	for _, m := range analysis.Markets {
		verdicts[m.Market] = m.Verdict
	}
	assert.Equal(t, podds.VerdictValueBet, verdicts[podds.MarketOverGoals])
	assert.Equal(t, podds.VerdictNoValue, verdicts[podds.MarketBackFavourite])
	assert.Equal(t, podds.VerdictCannotCompare, verdicts[podds.MarketLayUnderdog])
	assert.Equal(t, podds.VerdictCannotCompare, verdicts[podds.MarketBothTeamsScore])
}

func TestHandleAnalyseMatchErrors(t *testing.T) {
	p := seed(t)

	_, err := p.HandleAnalyseMatch(map[string]any{"home_team": "Arsenal"})
	assert.ErrorContains(t, err, "away_team is required")

	_, err = p.HandleAnalyseMatch(map[string]any{"home_team": "Arsenal", "away_team": "Everton"})
	assert.ErrorIs(t, err, podds.ErrUnknownTeam)

	// Leeds never played away in the cup
	_, err = p.HandleAnalyseMatch(map[string]any{"home_team": "Arsenal", "away_team": "Leeds", "competition": "FA Cup"})
	assert.ErrorIs(t, err, podds.ErrInsufficientData)

	_, err = p.HandleAnalyseMatch(map[string]any{"home_team": "Arsenal", "away_team": "Spurs", "competition": "La Liga"})
	assert.ErrorIs(t, err, podds.ErrInsufficientData)

	_, err = newTestTools(t).HandleAnalyseMatch(map[string]any{"home_team": "A", "away_team": "B"})
	assert.ErrorIs(t, err, podds.ErrInsufficientData)
}

func TestHandleTeamForm(t *testing.T) {
	p := seed(t)

	result, err := p.HandleTeamForm(map[string]any{"team": "LEEDS"})
	require.NoError(t, err)
	report := result.(*podds.TeamFormReport)
	assert.Equal(t, "Leeds", report.Team)
	require.NotNil(t, report.Home)
	assert.Equal(t, 4.0, report.Home.GoalsConcededMean)
	assert.Nil(t, report.Away)
	assert.NotEmpty(t, report.AwayError)

	// across every competition Arsenal have 3 away games
	result, err = p.HandleTeamForm(map[string]any{"team": "Arsenal"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.(*podds.TeamFormReport).Away.Matches)

	result, err = p.HandleTeamForm(map[string]any{"team": "Arsenal", "competition": "premier league"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.(*podds.TeamFormReport).Away.Matches)

	_, err = p.HandleTeamForm(map[string]any{})
	assert.Error(t, err)
}

func TestHandleListTeams(t *testing.T) {
	p := seed(t)

	result, err := p.HandleListTeams(nil)
	require.NoError(t, err)
	listing := result.(map[string]any)
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Leeds", "Spurs"}, listing["teams"])
	assert.Equal(t, []string{"FA Cup", "Premier League"}, listing["competitions"])
	assert.Equal(t, 8, listing["matches"])

	result, err = p.HandleListTeams(map[string]any{"competition": "FA Cup"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Arsenal", "Leeds"}, result.(map[string]any)["teams"])
}

func TestHandleRecordResult(t *testing.T) {
	p := newTestTools(t)

	result, err := p.HandleRecordResult(map[string]any{
		"competition": "Championship",
		"home_team":   "Leeds",
		"away_team":   "Hull",
		"home_goals":  "3",
		"away_goals":  float64(0),
		"date":        "2024-10-05",
		"season":      "2024/2025",
	})
	require.NoError(t, err)
	m := result.(*podds.MatchRecord)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "3 - 0", m.ScoreStr())
	assert.Equal(t, 2024, m.PlayedAt.Year())
	assert.Equal(t, "2024/2025", m.Season)
	assert.False(t, m.CreatedAt.IsZero())

	bad := []map[string]any{
		{"competition": "C", "home_team": "Leeds", "away_team": "Leeds", "home_goals": 1.0, "away_goals": 0.0},
		{"competition": "C", "home_team": "Leeds", "away_team": "Hull", "home_goals": -1.0, "away_goals": 0.0},
		{"competition": "C", "home_team": "Leeds", "away_team": "Hull", "home_goals": 1.5, "away_goals": 0.0},
		{"competition": "C", "home_team": "Leeds", "away_team": "Hull", "home_goals": 1.0},
		{"competition": "C", "home_team": "Leeds", "away_team": "Hull", "home_goals": 1.0, "away_goals": 0.0, "date": "5/10/2024"},
		{"home_team": "Leeds", "away_team": "Hull", "home_goals": 1.0, "away_goals": 0.0},
	}
	for _, params := range bad {
		_, err := p.HandleRecordResult(params)
		assert.Error(t, err, "%v", params)
	}

	_, err = p.HandleRecordResult("not a map")
	assert.Error(t, err)
}
