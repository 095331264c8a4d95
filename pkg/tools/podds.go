package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/protocol"
	"github.com/richard-senior/podds/pkg/util"
	"github.com/richard-senior/podds/pkg/util/podds"
)

// ToolPrefix is prepended to every tool name on registration
const ToolPrefix = "mcp___"

// Registration pairs a tool definition with its handler
type Registration struct {
	Tool    protocol.Tool
	Handler func(params any) (any, error)
}

// PoddsTools exposes the football odds model over the records held in a store
type PoddsTools struct {
	store *podds.Store
}

// NewPoddsTools creates the tool set backed by store
func NewPoddsTools(store *podds.Store) *PoddsTools {
	return &PoddsTools{store: store}
}

// Registrations returns every tool with its handler, names not yet prefixed
func (p *PoddsTools) Registrations() []Registration {
	return []Registration{
		{Tool: AnalyseMatchTool(), Handler: p.HandleAnalyseMatch},
		{Tool: TeamFormTool(), Handler: p.HandleTeamForm},
		{Tool: ListTeamsTool(), Handler: p.HandleListTeams},
		{Tool: RecordResultTool(), Handler: p.HandleRecordResult},
	}
}

// quoteParams maps tool parameters to the market they quote
var quoteParams = []struct {
	param  string
	market podds.Market
}{
	{"over_odd", podds.MarketOverGoals},
	{"back_favourite_odd", podds.MarketBackFavourite},
	{"lay_underdog_odd", podds.MarketLayUnderdog},
	{"both_teams_score_odd", podds.MarketBothTeamsScore},
}

var competitionProperty = protocol.ToolProperty{
	Type:        "string",
	Description: "Optional competition name such as 'Premier League'. When omitted every stored match is used.",
}

/////////////////////////////////////////////////////////////////////////
////// Tool definitions
/////////////////////////////////////////////////////////////////////////

func AnalyseMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "podds_analyse_match",
		Description: `
		Estimates fair odds for a football match from the stored historical results using a Poisson goals model.
		Reports over/under goals, home/draw/away, favourite/underdog and both-teams-to-score probabilities,
		the fair decimal odd for each market and, where a market odd is supplied, whether it is a value bet.
		Each market odd is optional; a missing or invalid odd only affects that market.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home_team":   {Type: "string", Description: "The home team, as spelled in the stored results (case is ignored)"},
				"away_team":   {Type: "string", Description: "The away team, as spelled in the stored results (case is ignored)"},
				"competition": competitionProperty,
				"over_odd": {
					Type:        "string",
					Description: "Decimal market odd for over the configured goal line (default Over 2.5 goals), e.g. 1.95",
				},
				"back_favourite_odd":   {Type: "string", Description: "Decimal market odd for the favourite to win"},
				"lay_underdog_odd":     {Type: "string", Description: "Decimal market odd for the underdog to win"},
				"both_teams_score_odd": {Type: "string", Description: "Decimal market odd for both teams to score"},
			},
			Required: []string{"home_team", "away_team"},
		},
	}
}

func TeamFormTool() protocol.Tool {
	return protocol.Tool{
		Name:        "podds_team_form",
		Description: "Returns a team's average goals scored and conceded at home and away from the stored results",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"team":        {Type: "string", Description: "The team name (case is ignored)"},
				"competition": competitionProperty,
			},
			Required: []string{"team"},
		},
	}
}

func ListTeamsTool() protocol.Tool {
	return protocol.Tool{
		Name:        "podds_list_teams",
		Description: "Lists the team names known from the stored results, and the stored competitions",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"competition": competitionProperty,
			},
			Required: []string{},
		},
	}
}

func RecordResultTool() protocol.Tool {
	return protocol.Tool{
		Name: "podds_record_result",
		Description: `
		Stores one finished match in the local results database.
		Recording the same competition, season, date and teams again replaces the earlier score.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"competition": {Type: "string", Description: "Competition name such as 'Premier League'"},
				"home_team":   {Type: "string", Description: "The home team"},
				"away_team":   {Type: "string", Description: "The away team"},
				"home_goals":  {Type: "integer", Description: "Full time goals scored by the home team"},
				"away_goals":  {Type: "integer", Description: "Full time goals scored by the away team"},
				"date":        {Type: "string", Description: "Optional match date as YYYY-MM-DD"},
				"season":      {Type: "string", Description: "Optional season label such as 2024/2025"},
			},
			Required: []string{"competition", "home_team", "away_team", "home_goals", "away_goals"},
		},
	}
}

/////////////////////////////////////////////////////////////////////////
////// Handlers
/////////////////////////////////////////////////////////////////////////

// HandleAnalyseMatch runs the full match analysis
func (p *PoddsTools) HandleAnalyseMatch(params any) (any, error) {
	logger.Info("Handling podds analyse match invocation")

	paramsMap, err := util.ParamsAsMap(params)
	if err != nil {
		return nil, err
	}
	home, err := util.RequireParamString(paramsMap, "home_team")
	if err != nil {
		return nil, err
	}
	away, err := util.RequireParamString(paramsMap, "away_team")
	if err != nil {
		return nil, err
	}

	req := podds.MatchRequest{HomeTeam: home, AwayTeam: away, Quotes: map[podds.Market]string{}}
	for _, q := range quoteParams {
		text, err := util.GetParamString(paramsMap, q.param)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", q.param, err)
		}
		req.Quotes[q.market] = text
	}

	analyser, err := p.analyser(paramsMap)
	if err != nil {
		return nil, err
	}
	return analyser.Analyse(req)
}

// HandleTeamForm reports home and away form for one team
func (p *PoddsTools) HandleTeamForm(params any) (any, error) {
	logger.Info("Handling podds team form invocation")

	paramsMap, err := util.ParamsAsMap(params)
	if err != nil {
		return nil, err
	}
	team, err := util.RequireParamString(paramsMap, "team")
	if err != nil {
		return nil, err
	}

	analyser, err := p.analyser(paramsMap)
	if err != nil {
		return nil, err
	}
	return analyser.TeamForm(team)
}

// HandleListTeams lists the canonical team names and the stored competitions
func (p *PoddsTools) HandleListTeams(params any) (any, error) {
	logger.Info("Handling podds list teams invocation")

	paramsMap, err := util.ParamsAsMap(params)
	if err != nil {
		return nil, err
	}
	competition, err := util.GetParamString(paramsMap, "competition")
	if err != nil {
		return nil, err
	}

	records, err := p.store.LoadMatchRecords(competition)
	if err != nil {
		return nil, err
	}
	competitions, err := p.store.Competitions()
	if err != nil {
		return nil, err
	}

	teams := podds.NewTeamIndex(records).Teams()
	return map[string]any{
		"competition":  competition,
		"competitions": competitions,
		"matches":      len(records),
		"teams":        teams,
	}, nil
}

// HandleRecordResult validates and stores one finished match
func (p *PoddsTools) HandleRecordResult(params any) (any, error) {
	logger.Info("Handling podds record result invocation")

	paramsMap, err := util.ParamsAsMap(params)
	if err != nil {
		return nil, err
	}

	m := &podds.MatchRecord{}
	if m.Competition, err = util.RequireParamString(paramsMap, "competition"); err != nil {
		return nil, err
	}
	if m.HomeTeam, err = util.RequireParamString(paramsMap, "home_team"); err != nil {
		return nil, err
	}
	if m.AwayTeam, err = util.RequireParamString(paramsMap, "away_team"); err != nil {
		return nil, err
	}
	if m.HomeGoals, err = util.RequireParamInteger(paramsMap, "home_goals"); err != nil {
		return nil, err
	}
	if m.AwayGoals, err = util.RequireParamInteger(paramsMap, "away_goals"); err != nil {
		return nil, err
	}
	if m.Season, err = util.GetParamString(paramsMap, "season"); err != nil {
		return nil, err
	}

	date, err := util.GetParamString(paramsMap, "date")
	if err != nil {
		return nil, err
	}
	if date != "" {
		if m.PlayedAt, err = time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("parameter date must be YYYY-MM-DD: %w", err)
		}
	}

	if err := p.store.Save(m); err != nil {
		return nil, err
	}

	// return the row as stored
	stored := &podds.MatchRecord{}
	if err := p.store.FindByPrimaryKey(stored, m.GetPrimaryKey()); err != nil {
		return nil, err
	}
	m = stored
	logger.Info("Recorded result", m.HomeTeam, m.ScoreStr(), m.AwayTeam)
	return m, nil
}

// analyser loads the records of the requested competition
func (p *PoddsTools) analyser(params map[string]any) (*podds.Analyser, error) {
	competition, err := util.GetParamString(params, "competition")
	if err != nil {
		return nil, err
	}
	records, err := p.store.LoadMatchRecords(competition)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if competition != "" {
			return nil, fmt.Errorf("%w: no match records stored for %s", podds.ErrInsufficientData, competition)
		}
		return nil, fmt.Errorf("%w: no match records stored", podds.ErrInsufficientData)
	}
	return podds.NewAnalyser(records), nil
}

// StripToolPrefix removes ToolPrefix from a tool name if present
func StripToolPrefix(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), ToolPrefix)
}
