package podds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoissonProbability(t *testing.T) {
	lambda := 2.5
	e := math.Exp(-lambda)

	assert.InDelta(t, e, PoissonProbability(0, lambda), 1e-15)
	assert.InDelta(t, lambda*e, PoissonProbability(1, lambda), 1e-15)
	assert.InDelta(t, lambda*lambda/2*e, PoissonProbability(2, lambda), 1e-15)

	// zero rate puts all the mass on zero goals
	assert.Equal(t, 1.0, PoissonProbability(0, 0))
	assert.Equal(t, 0.0, PoissonProbability(1, 0))
	assert.Equal(t, 0.0, PoissonProbability(-1, 1.2))
}

func TestPoissonProbabilityLargeK(t *testing.T) {
	// a running product never overflows where lambda^k and k! would
	p := PoissonProbability(200, 150)
	assert.False(t, math.IsNaN(p))
	assert.False(t, math.IsInf(p, 0))
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestUnderOverAtZeroGoals(t *testing.T) {
	under := UnderGoalsProbability(0, 2.5)
	over := OverGoalsProbability(0, 2.5)

	assert.Equal(t, 1.0, under)
	assert.Equal(t, 0.0, over)

	_, err := FairOdd(over)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefinedProbability))
	assert.Equal(t, "fair odd cannot be computed", err.Error())
}

func TestUnderOverLines(t *testing.T) {
	lambda := 2.5
	e := math.Exp(-lambda)

	assert.InDelta(t, e+lambda*e, UnderGoalsProbability(lambda, 1.5), 1e-12)
	assert.InDelta(t, e, UnderGoalsProbability(lambda, 0.5), 1e-12)

	for _, line := range []float64{0.5, 1.5, 2.5, 3.5, 4.5} {
		under := UnderGoalsProbability(lambda, line)
		over := OverGoalsProbability(lambda, line)
		assert.InDelta(t, 1.0, under+over, 1e-12, "line %v", line)
		assert.GreaterOrEqual(t, over, 0.0)
		assert.LessOrEqual(t, over, 1.0)
	}
}

func TestPredictMatchWorkedExample(t *testing.T) {
	result, err := PredictMatch(MatchModelInput{HomeExpectedGoals: 1.5, AwayExpectedGoals: 1.0})
	require.NoError(t, err)

	assert.Equal(t, 2.5, result.TotalExpectedGoals)
	assert.Equal(t, 2.5, result.GoalLine)
	assert.InDelta(t, 0.5438, result.UnderGoalsProbability, 1e-4)
	assert.InDelta(t, 0.4562, result.OverGoalsProbability, 1e-4)

	fair, err := FairOdd(result.OverGoalsProbability)
	require.NoError(t, err)
	assert.InDelta(t, 2.192, fair, 1e-3)

	assert.Equal(t, 1, result.PredictedHomeGoals)
	assert.Equal(t, 0, result.PredictedAwayGoals)
	assert.Equal(t, SideHome, result.Favourite.Side)
	assert.False(t, result.Favourite.Tied)
	assert.Equal(t, result.Outcome.HomeWin, result.Favourite.FavouriteProbability)
	assert.Equal(t, result.Outcome.AwayWin, result.Favourite.UnderdogProbability)
	assert.Greater(t, result.Outcome.HomeWin, result.Outcome.AwayWin)
	assert.InDelta(t, 0.491075, result.BothTeamsScore, 1e-6)
	assert.Equal(t, 10, result.ScoreTruncation)
}

func TestPredictMatchRejectsBadRates(t *testing.T) {
	for _, in := range []MatchModelInput{
		{HomeExpectedGoals: -0.1, AwayExpectedGoals: 1},
		{HomeExpectedGoals: 1, AwayExpectedGoals: math.NaN()},
		{HomeExpectedGoals: math.Inf(1), AwayExpectedGoals: 1},
	} {
		_, err := PredictMatch(in)
		assert.ErrorIs(t, err, ErrInvalidExpectedGoals, "%+v", in)
	}
}

func TestOutcomesMatchMatrixMass(t *testing.T) {
	cdf := func(lambda float64, k int) float64 {
		sum := 0.0
		for i := 0; i <= k; i++ {
			sum += PoissonProbability(i, lambda)
		}
		return sum
	}

	for _, h := range []float64{0, 0.5, 1.3, 2.7, 5} {
		for _, a := range []float64{0, 0.8, 1.9, 3.4, 5} {
			m := NewScoreMatrix(h, a, 10)
			o := m.Outcomes()
			total := o.HomeWin + o.Draw + o.AwayWin

			assert.InDelta(t, m.Mass(), total, 1e-12, "h=%v a=%v", h, a)
			// the grid holds exactly the product of the two truncated marginals
			assert.InDelta(t, cdf(h, 10)*cdf(a, 10), m.Mass(), 1e-12, "h=%v a=%v", h, a)
			assert.LessOrEqual(t, total, 1.0+1e-12)
		}
	}
}

func TestTruncationErrorBound(t *testing.T) {
	// default grid: negligible error at typical league rates
	for _, h := range []float64{0, 0.4, 0.9, 1.4} {
		for _, a := range []float64{0, 0.4, 0.9, 1.4} {
			o := NewScoreMatrix(h, a, 10).Outcomes()
			assert.InDelta(t, 1.0, o.HomeWin+o.Draw+o.AwayWin, 1e-6, "h=%v a=%v", h, a)
		}
	}

	// a 20 goal grid keeps the error under 1e-6 for rates up to 5 per side
	for h := 0.0; h <= 5.0; h += 0.5 {
		for a := 0.0; a <= 5.0; a += 0.5 {
			o := NewScoreMatrix(h, a, 20).Outcomes()
			assert.InDelta(t, 1.0, o.HomeWin+o.Draw+o.AwayWin, 1e-6, "h=%v a=%v", h, a)
		}
	}

	// and the loss at K=10 for 5 goals a side is visible, which is why Mass is reported
	assert.Less(t, NewScoreMatrix(5, 5, 10).Mass(), 0.98)
}

func TestScoreMatrixLookup(t *testing.T) {
	m := NewScoreMatrix(1.2, 0.7, 4)
	assert.Equal(t, 4, m.MaxGoals())
	assert.InDelta(t, PoissonProbability(2, 1.2)*PoissonProbability(1, 0.7), m.Probability(2, 1), 1e-15)
	assert.Equal(t, 0.0, m.Probability(5, 0))
	assert.Equal(t, 0.0, m.Probability(0, -1))

	assert.Equal(t, 0, NewScoreMatrix(1, 1, -3).MaxGoals())
}

func TestBothTeamsToScore(t *testing.T) {
	assert.Equal(t, 0.0, BothTeamsToScoreProbability(0, 0))
	assert.Equal(t, 0.0, BothTeamsToScoreProbability(0, 2.3))
	assert.Equal(t, 0.0, BothTeamsToScoreProbability(1.7, 0))

	_, err := FairOdd(BothTeamsToScoreProbability(0, 0))
	assert.ErrorIs(t, err, ErrUndefinedProbability)

	rates := []float64{0, 0.1, 0.5, 1, 1.5, 2, 3, 5}
	for _, fixed := range []float64{0.3, 1.2, 2.5} {
		prevHome, prevAway := -1.0, -1.0
		for _, r := range rates {
			home := BothTeamsToScoreProbability(r, fixed)
			away := BothTeamsToScoreProbability(fixed, r)
			assert.Greater(t, home, prevHome, "home rate %v", r)
			assert.Greater(t, away, prevAway, "away rate %v", r)
			assert.LessOrEqual(t, home, 1.0)
			prevHome, prevAway = home, away
		}
	}
}

func TestFairOddRoundTrip(t *testing.T) {
	for _, p := range []float64{1, 0.75, 0.5, 0.4562, 0.3333, 0.1, 0.01, 1e-6} {
		odd, err := FairOdd(p)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, odd*p, 1e-12, "p=%v", p)
	}

	_, err := FairOdd(0)
	assert.ErrorIs(t, err, ErrUndefinedProbability)
	_, err = FairOdd(-0.2)
	assert.ErrorIs(t, err, ErrUndefinedProbability)
	_, err = FairOdd(math.NaN())
	assert.ErrorIs(t, err, ErrUndefinedProbability)
	_, err = FairOdd(1.2)
	assert.Error(t, err)
}

func TestDetermineFavourite(t *testing.T) {
	o := Outcome{HomeWin: 0.3, Draw: 0.25, AwayWin: 0.45}

	fav := DetermineFavourite(MatchModelInput{HomeExpectedGoals: 0.9, AwayExpectedGoals: 1.4}, o)
	assert.Equal(t, SideAway, fav.Side)
	assert.Equal(t, 0.45, fav.FavouriteProbability)
	assert.Equal(t, 0.3, fav.UnderdogProbability)

	fav = DetermineFavourite(MatchModelInput{HomeExpectedGoals: 1.4, AwayExpectedGoals: 0.9}, o)
	assert.Equal(t, SideHome, fav.Side)
	assert.Equal(t, 0.3, fav.FavouriteProbability)

	// equal rates: flagged as tied, home win used as the nominal favourite price
	fav = DetermineFavourite(MatchModelInput{HomeExpectedGoals: 1.1, AwayExpectedGoals: 1.1}, o)
	assert.Equal(t, SideNone, fav.Side)
	assert.True(t, fav.Tied)
	assert.Equal(t, 0.3, fav.FavouriteProbability)
	assert.Equal(t, 0.45, fav.UnderdogProbability)
}

func TestPredictMatchUsesConfiguredLines(t *testing.T) {
	original := Config
	t.Cleanup(func() { Config = original })

	c := DefaultPoddsConfig()
	c.GoalLine = 3.5
	c.SecondaryGoalLine = 0.5
	c.ScoreTruncation = 6
	require.NoError(t, UpdateConfig(c))

	result, err := PredictMatch(MatchModelInput{HomeExpectedGoals: 1.5, AwayExpectedGoals: 1.0})
	require.NoError(t, err)
	assert.Equal(t, 3.5, result.GoalLine)
	assert.InDelta(t, OverGoalsProbability(2.5, 3.5), result.OverGoalsProbability, 1e-15)
	assert.InDelta(t, 1-math.Exp(-2.5), result.SecondaryOverProbability, 1e-12)
	assert.Equal(t, 6, result.ScoreTruncation)
}
