package scoring

// Default badge thresholds
const (
	DefaultBestValuePercentile = 0.75
	DefaultHighProteinRatio    = 0.30
)

// Config holds the tunable badge thresholds.
// Overridden at runtime from the settings keys badge_best_value_percentile and
// badge_high_protein_ratio.
type Config struct {
	// BestValuePercentile is the calorie-efficiency percentile (0, 1] a food must reach
	BestValuePercentile float64
	// HighProteinRatio is the share of calories from protein a food must exceed
	HighProteinRatio float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		BestValuePercentile: DefaultBestValuePercentile,
		HighProteinRatio:    DefaultHighProteinRatio,
	}
}

// normalized replaces out-of-range values with defaults
func (c Config) normalized() Config {
	if !(c.BestValuePercentile > 0 && c.BestValuePercentile <= 1) {
		c.BestValuePercentile = DefaultBestValuePercentile
	}
	if !(c.HighProteinRatio >= 0 && c.HighProteinRatio < 1) {
		c.HighProteinRatio = DefaultHighProteinRatio
	}
	return c
}
