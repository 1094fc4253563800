// Package weight keeps the body weight log and its moving-average trend.
package weight

import "time"

const (
	// MinWeightKg and MaxWeightKg bound a logged weight
	MinWeightKg = 20.0
	MaxWeightKg = 400.0
	// DefaultTrendWindow applies when weight_trend_window is unset
	DefaultTrendWindow = 7
	// DefaultHistoryDays is the history window when none is requested
	DefaultHistoryDays = 90
	// MaxHistoryDays bounds history queries
	MaxHistoryDays = 3650
	// stableThresholdKg is the change under which the trend counts as stable
	stableThresholdKg = 0.2
)

// Direction summarizes where the weight is heading
type Direction string

const (
	DirectionLosing  Direction = "losing"
	DirectionGaining Direction = "gaining"
	DirectionStable  Direction = "stable"
)

// Entry is the weight logged for a date. One entry per date; the last write wins.
type Entry struct {
	UpdatedAt time.Time `json:"updated_at"`
	Date      string    `json:"date"`
	WeightKg  float64   `json:"weight_kg"`
}

// Input is a weight log request; an empty date means today
type Input struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// Trend is the moving-average view of the history
type Trend struct {
	// SMA is nil until the history holds a full window
	SMA *float64 `json:"sma"`
	// EMA falls back to the plain mean while the history is shorter than the window
	EMA       *float64  `json:"ema"`
	Latest    float64   `json:"latest"`
	Change    float64   `json:"change"`
	Direction Direction `json:"direction"`
	Window    int       `json:"window"`
	Points    int       `json:"points"`
}

// History is the logged weights over a window plus their trend
type History struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Entries []Entry `json:"entries"`
	Trend   Trend   `json:"trend"`
}
