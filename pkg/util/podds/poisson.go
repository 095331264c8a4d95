package podds

import (
	"fmt"
	"math"
)

// MatchModelInput holds the expected goal rates fed to the Poisson model
type MatchModelInput struct {
	HomeExpectedGoals float64 `json:"homeExpectedGoals"`
	AwayExpectedGoals float64 `json:"awayExpectedGoals"`
}

// Validate rejects negative, NaN and infinite rates
func (in MatchModelInput) Validate() error {
	for _, side := range []struct {
		name string
		rate float64
	}{{"home", in.HomeExpectedGoals}, {"away", in.AwayExpectedGoals}} {
		if math.IsNaN(side.rate) || math.IsInf(side.rate, 0) || side.rate < 0 {
			return fmt.Errorf("%w: %s rate %v", ErrInvalidExpectedGoals, side.name, side.rate)
		}
	}
	return nil
}

// TotalExpectedGoals is the rate of the Poisson distribution for goals in the match
func (in MatchModelInput) TotalExpectedGoals() float64 {
	return in.HomeExpectedGoals + in.AwayExpectedGoals
}

// Outcome holds the home win, draw and away win probabilities
type Outcome struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// Side identifies the favourite of a match
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideNone Side = "none"
)

// Favourite is the favourite/underdog split of a match.
// When both expected goal rates are equal Side is SideNone and Tied is set;
// the home win probability is then used as the nominal favourite probability
// and the away win probability as the underdog probability.
type Favourite struct {
	Side                 Side    `json:"side"`
	Tied                 bool    `json:"tied"`
	FavouriteProbability float64 `json:"favouriteProbability"`
	UnderdogProbability  float64 `json:"underdogProbability"`
}

// PoissonResult holds the complete Poisson analysis of a match
type PoissonResult struct {
	Input                    MatchModelInput `json:"input"`
	TotalExpectedGoals       float64         `json:"totalExpectedGoals"`
	GoalLine                 float64         `json:"goalLine"`
	UnderGoalsProbability    float64         `json:"underGoalsProbability"`
	OverGoalsProbability     float64         `json:"overGoalsProbability"`
	SecondaryGoalLine        float64         `json:"secondaryGoalLine"`
	SecondaryOverProbability float64         `json:"secondaryOverProbability"`
	Outcome                  Outcome         `json:"outcome"`
	ScoreTruncation          int             `json:"scoreTruncation"`
	MatrixMass               float64         `json:"matrixMass"`
	PredictedHomeGoals       int             `json:"predictedHomeGoals"`
	PredictedAwayGoals       int             `json:"predictedAwayGoals"`
	Favourite                Favourite       `json:"favourite"`
	BothTeamsScore           float64         `json:"bothTeamsScoreProbability"`
}

// PredictMatch runs the Poisson model for the given expected goal rates
// Uses centralized configuration from Config for the goal lines and truncation
func PredictMatch(in MatchModelInput) (*PoissonResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	total := in.TotalExpectedGoals()
	under := UnderGoalsProbability(total, Config.GoalLine)

	matrix := NewScoreMatrix(in.HomeExpectedGoals, in.AwayExpectedGoals, Config.ScoreTruncation)
	outcome := matrix.Outcomes()
	predictedHome, predictedAway := matrix.MostLikelyScore()

	return &PoissonResult{
		Input:                    in,
		TotalExpectedGoals:       total,
		GoalLine:                 Config.GoalLine,
		UnderGoalsProbability:    under,
		OverGoalsProbability:     complementProbability(under),
		SecondaryGoalLine:        Config.SecondaryGoalLine,
		SecondaryOverProbability: OverGoalsProbability(total, Config.SecondaryGoalLine),
		Outcome:                  outcome,
		ScoreTruncation:          Config.ScoreTruncation,
		MatrixMass:               matrix.Mass(),
		PredictedHomeGoals:       predictedHome,
		PredictedAwayGoals:       predictedAway,
		Favourite:                DetermineFavourite(in, outcome),
		BothTeamsScore:           BothTeamsToScoreProbability(in.HomeExpectedGoals, in.AwayExpectedGoals),
	}, nil
}

// PoissonProbability returns P(k; lambda) = lambda^k * e^-lambda / k!
// Built as a running product so no factorial is ever materialised.
func PoissonProbability(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	p := math.Exp(-lambda)
	for i := 1; i <= k; i++ {
		p *= lambda / float64(i)
	}
	return p
}

// UnderGoalsProbability is the chance that a Poisson(lambdaTotal) goal count
// stays under a half-goal line, i.e. P(0) + ... + P(floor(line)).
func UnderGoalsProbability(lambdaTotal float64, line float64) float64 {
	maxGoals := int(math.Floor(line))
	sum := 0.0
	for k := 0; k <= maxGoals; k++ {
		sum += PoissonProbability(k, lambdaTotal)
	}
	return clampProbability(sum)
}

// OverGoalsProbability is 1 - UnderGoalsProbability
func OverGoalsProbability(lambdaTotal float64, line float64) float64 {
	return complementProbability(UnderGoalsProbability(lambdaTotal, line))
}

// BothTeamsToScoreProbability assumes "home scores" and "away scores" are independent
// so P = (1 - e^-home) * (1 - e^-away)
func BothTeamsToScoreProbability(homeLambda, awayLambda float64) float64 {
	// -Expm1(-x) is 1 - e^-x without cancellation for small x
	return clampProbability(-math.Expm1(-homeLambda) * -math.Expm1(-awayLambda))
}

// FairOdd returns the break even decimal odd 1/p.
// Zero probability has no fair odd and gives ErrUndefinedProbability.
func FairOdd(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 {
		return 0, ErrUndefinedProbability
	}
	if p > 1 {
		return 0, fmt.Errorf("probability %v is greater than 1", p)
	}
	odd := 1 / p
	if math.IsInf(odd, 0) {
		return 0, ErrUndefinedProbability
	}
	return odd, nil
}

// DetermineFavourite picks the side with the strictly larger expected goals rate
func DetermineFavourite(in MatchModelInput, o Outcome) Favourite {
	switch {
	case in.HomeExpectedGoals > in.AwayExpectedGoals:
		return Favourite{Side: SideHome, FavouriteProbability: o.HomeWin, UnderdogProbability: o.AwayWin}
	case in.HomeExpectedGoals < in.AwayExpectedGoals:
		return Favourite{Side: SideAway, FavouriteProbability: o.AwayWin, UnderdogProbability: o.HomeWin}
	default:
		return Favourite{Side: SideNone, Tied: true, FavouriteProbability: o.HomeWin, UnderdogProbability: o.AwayWin}
	}
}

/////////////////////////////////////////////////////////////////////////
////// Score matrix
/////////////////////////////////////////////////////////////////////////

// ScoreMatrix is the joint probability of every scoreline from 0-0 to N-N.
// Goals beyond N are dropped, so the cells sum to slightly less than one;
// Mass reports how much probability the truncated grid captured.
type ScoreMatrix struct {
	cells [][]float64
}

// NewScoreMatrix creates the outer product of two independent Poisson distributions
func NewScoreMatrix(homeLambda, awayLambda float64, maxGoals int) *ScoreMatrix {
	if maxGoals < 0 {
		maxGoals = 0
	}
	homeProbs := goalProbabilities(homeLambda, maxGoals)
	awayProbs := goalProbabilities(awayLambda, maxGoals)

	cells := make([][]float64, len(homeProbs))
	for i := range homeProbs {
		cells[i] = make([]float64, len(awayProbs))
		for j := range awayProbs {
			cells[i][j] = homeProbs[i] * awayProbs[j]
		}
	}
	return &ScoreMatrix{cells: cells}
}

// goalProbabilities returns P(0..maxGoals) for one side
func goalProbabilities(lambda float64, maxGoals int) []float64 {
	probs := make([]float64, maxGoals+1)
	for k := range probs {
		probs[k] = PoissonProbability(k, lambda)
	}
	return probs
}

// Probability returns the chance of the exact scoreline, zero outside the grid
func (sm *ScoreMatrix) Probability(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals >= len(sm.cells) || awayGoals >= len(sm.cells[homeGoals]) {
		return 0
	}
	return sm.cells[homeGoals][awayGoals]
}

// MaxGoals returns the truncation bound N
func (sm *ScoreMatrix) MaxGoals() int {
	return len(sm.cells) - 1
}

// Outcomes buckets the grid into home win (lower triangle), draw (diagonal)
// and away win (upper triangle)
func (sm *ScoreMatrix) Outcomes() Outcome {
	var o Outcome
	for i := range sm.cells {
		for j, p := range sm.cells[i] {
			switch {
			case i > j:
				o.HomeWin += p
			case i == j:
				o.Draw += p
			default:
				o.AwayWin += p
			}
		}
	}
	o.HomeWin = clampProbability(o.HomeWin)
	o.Draw = clampProbability(o.Draw)
	o.AwayWin = clampProbability(o.AwayWin)
	return o
}

// Mass is the total probability held in the grid, 1 minus the truncation error
func (sm *ScoreMatrix) Mass() float64 {
	total := 0.0
	for i := range sm.cells {
		for _, p := range sm.cells[i] {
			total += p
		}
	}
	return total
}

// MostLikelyScore returns the scoreline with the highest probability.
// Ties go to the lowest home goals then lowest away goals.
func (sm *ScoreMatrix) MostLikelyScore() (int, int) {
	maxProb := -1.0
	home, away := 0, 0
	for i := range sm.cells {
		for j, p := range sm.cells[i] {
			if p > maxProb {
				maxProb = p
				home, away = i, j
			}
		}
	}
	return home, away
}

func complementProbability(p float64) float64 {
	return clampProbability(1 - p)
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
