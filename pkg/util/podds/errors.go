package podds

import "errors"

var (
	// ErrInsufficientData means a team has no matches in the role the calculation needs
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidMarketOdd means a market odd could not be read as a positive decimal
	ErrInvalidMarketOdd = errors.New("invalid market odd")

	// ErrUndefinedProbability means a fair odd was requested for an outcome with zero probability
	ErrUndefinedProbability = errors.New("fair odd cannot be computed")

	// ErrUnknownTeam means a team name is not present in the loaded dataset
	ErrUnknownTeam = errors.New("unknown team")

	// ErrInvalidExpectedGoals means an expected goals rate is negative or not a finite number
	ErrInvalidExpectedGoals = errors.New("invalid expected goals")

	// ErrInvalidMatchRecord means a match record failed validation
	ErrInvalidMatchRecord = errors.New("invalid match record")
)
