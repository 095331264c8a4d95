package podds

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// PoddsConfig contains all configurable parameters that influence the model
// This centralizes all magic numbers and constants for easy adjustment
type PoddsConfig struct {
	// Database parameters
	DbPath string `yaml:"db_path"` // The location of the podds sqlite database

	// === GOALS MARKETS ===

	GoalLine          float64 `yaml:"goal_line"`           // Over/Under line priced and compared (default: 2.5)
	SecondaryGoalLine float64 `yaml:"secondary_goal_line"` // Extra line reported for information (default: 1.5)

	// === SCORE MATRIX ===

	// Maximum goals per side considered when summing win/draw/loss.
	// The double sum over 0..N is a truncation of an infinite series.
	ScoreTruncation int `yaml:"score_truncation"` // (default: 10)

	// === PRESENTATION ===

	OddsPrecision    int32 `yaml:"odds_precision"`    // Decimal places for rounded odds (default: 2)
	PercentPrecision int32 `yaml:"percent_precision"` // Decimal places for rounded percentages (default: 2)
}

// DefaultPoddsConfig returns the default configuration with all standard values
func DefaultPoddsConfig() *PoddsConfig {
	return &PoddsConfig{
		DbPath: poddsDbPath,

		GoalLine:          2.5,
		SecondaryGoalLine: 1.5,

		ScoreTruncation: 10,

		OddsPrecision:    2,
		PercentPrecision: 2,
	}
}

// Global configuration instance
var Config *PoddsConfig

func init() {
	Config = DefaultPoddsConfig()
}

// UpdateConfig validates and installs a new global configuration
func UpdateConfig(newConfig *PoddsConfig) error {
	if err := ValidateConfig(newConfig); err != nil {
		return err
	}
	Config = newConfig
	return nil
}

// LoadConfigFile reads a YAML file and overlays it on the default configuration.
// Keys missing from the file keep their default values.
func LoadConfigFile(path string) (*PoddsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig overlays YAML content on the default configuration and validates the result
func ParseConfig(data []byte) (*PoddsConfig, error) {
	config := DefaultPoddsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *PoddsConfig) error {
	if config == nil {
		return fmt.Errorf("config must not be nil")
	}

	if config.DbPath == "" {
		return fmt.Errorf("DbPath must not be empty")
	}

	for name, line := range map[string]float64{"GoalLine": config.GoalLine, "SecondaryGoalLine": config.SecondaryGoalLine} {
		if !isHalfGoalLine(line) {
			return fmt.Errorf("%s must be a positive half-goal line such as 2.5, got: %f", name, line)
		}
	}

	if config.ScoreTruncation < 3 {
		return fmt.Errorf("ScoreTruncation should be at least 3 to capture realistic scores, got: %d", config.ScoreTruncation)
	}

	if config.OddsPrecision < 0 || config.PercentPrecision < 0 {
		return fmt.Errorf("precision values must not be negative")
	}

	return nil
}

// isHalfGoalLine reports whether line is one of 0.5, 1.5, 2.5 ...
func isHalfGoalLine(line float64) bool {
	if line <= 0 || math.IsNaN(line) || math.IsInf(line, 0) {
		return false
	}
	return line-math.Floor(line) == 0.5
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetGoalLine returns the Over/Under line that is priced against the market
func GetGoalLine() float64 {
	return Config.GoalLine
}

// GetScoreTruncation returns the maximum goals per side in the score matrix
func GetScoreTruncation() int {
	return Config.ScoreTruncation
}
