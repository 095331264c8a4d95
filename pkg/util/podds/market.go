package podds

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Market is a betting market the model can price
type Market string

const (
	MarketOverGoals      Market = "over_goals"
	MarketBackFavourite  Market = "back_favourite"
	MarketLayUnderdog    Market = "lay_underdog"
	MarketBothTeamsScore Market = "both_teams_score"
)

// Markets lists every priced market in presentation order
var Markets = []Market{MarketOverGoals, MarketBackFavourite, MarketLayUnderdog, MarketBothTeamsScore}

// Label returns a human readable market name
func (m Market) Label() string {
	switch m {
	case MarketOverGoals:
		return fmt.Sprintf("Over %s goals", decimal.NewFromFloat(Config.GoalLine).String())
	case MarketBackFavourite:
		return "Back favourite"
	case MarketLayUnderdog:
		return "Lay underdog"
	case MarketBothTeamsScore:
		return "Both teams to score"
	}
	return string(m)
}

// Verdict is the result of comparing a market odd with a fair odd
type Verdict string

const (
	VerdictValueBet      Verdict = "value_bet"
	VerdictNoValue       Verdict = "no_value"
	VerdictCannotCompare Verdict = "cannot_compare"
)

// MarketQuote is a decimal odd offered by the market
type MarketQuote struct {
	Market Market          `json:"market"`
	Odd    decimal.Decimal `json:"odd"`
}

// ParseMarketQuote reads a user entered decimal odd.
// Blank text, text that is not a number, odds <= 0 and odds too large for a
// float64 give ErrInvalidMarketOdd.
// A comma is accepted as the decimal separator ("1,95").
func ParseMarketQuote(market Market, text string) (*MarketQuote, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, fmt.Errorf("%w: no odd given for %s", ErrInvalidMarketOdd, market)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	odd, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q for %s is not a number", ErrInvalidMarketOdd, text, market)
	}
	if !odd.IsPositive() {
		return nil, fmt.Errorf("%w: %s for %s must be greater than zero", ErrInvalidMarketOdd, odd.String(), market)
	}
	if !isFinite(odd.InexactFloat64()) {
		return nil, fmt.Errorf("%w: %q for %s is too large", ErrInvalidMarketOdd, text, market)
	}
	return &MarketQuote{Market: market, Odd: odd}, nil
}

// ClassifyValue compares a market quote with a fair odd.
// A nil fair odd or nil quote cannot be compared.
func ClassifyValue(fairOdd *float64, quote *MarketQuote) Verdict {
	if fairOdd == nil || quote == nil {
		return VerdictCannotCompare
	}
	if quote.Odd.GreaterThan(decimal.NewFromFloat(*fairOdd)) {
		return VerdictValueBet
	}
	return VerdictNoValue
}

// MarketAssessment is the priced and compared result for one market.
// Problems are recorded here rather than returned so other markets still complete.
type MarketAssessment struct {
	Market         Market   `json:"market"`
	Label          string   `json:"label"`
	Selection      string   `json:"selection,omitempty"`
	Probability    float64  `json:"probability"`
	Percentage     float64  `json:"percentage"`
	FairOdd        *float64 `json:"fairOdd,omitempty"`
	FairOddError   string   `json:"fairOddError,omitempty"`
	MarketOdd      *float64 `json:"marketOdd,omitempty"`
	MarketOddError string   `json:"marketOddError,omitempty"`
	Verdict        Verdict  `json:"verdict"`
}

// AssessMarket prices a market from its model probability and compares it
// with the quote text supplied by the user (which may be blank)
func AssessMarket(market Market, selection string, probability float64, quoteText string) MarketAssessment {
	a := MarketAssessment{
		Market:      market,
		Label:       market.Label(),
		Selection:   selection,
		Probability: probability,
		Percentage:  RoundPercent(probability),
	}

	var fair *float64
	if odd, err := FairOdd(probability); err != nil {
		a.FairOddError = err.Error()
	} else {
		fair = &odd
		rounded := RoundOdd(odd)
		a.FairOdd = &rounded
	}

	quote, err := ParseMarketQuote(market, quoteText)
	if err != nil {
		a.MarketOddError = err.Error()
	} else {
		f := quote.Odd.InexactFloat64()
		a.MarketOdd = &f
	}

	// compare against the unrounded fair odd
	a.Verdict = ClassifyValue(fair, quote)
	return a
}

// RoundOdd rounds an odd for presentation using Config.OddsPrecision
func RoundOdd(odd float64) float64 {
	if !isFinite(odd) {
		return odd
	}
	return decimal.NewFromFloat(odd).Round(Config.OddsPrecision).InexactFloat64()
}

// RoundPercent converts a probability to a percentage rounded using Config.PercentPrecision
func RoundPercent(p float64) float64 {
	if !isFinite(p) {
		return p
	}
	return decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).Round(Config.PercentPrecision).InexactFloat64()
}

// decimal cannot represent NaN or infinity
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
