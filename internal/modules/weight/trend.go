package weight

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// ComputeTrend derives the moving averages of weights, oldest first.
// EMA falls back to the mean of all points while fewer than window points exist.
func ComputeTrend(weights []float64, window int) Trend {
	if window < 2 {
		window = DefaultTrendWindow
	}
	trend := Trend{Window: window, Points: len(weights), Direction: DirectionStable}
	if len(weights) == 0 {
		return trend
	}

	trend.Latest = weights[len(weights)-1]
	trend.Change = trend.Latest - weights[0]

	if len(weights) < window {
		mean := stat.Mean(weights, nil)
		trend.EMA = &mean
	} else {
		if ema := lastValid(talib.Ema(weights, window)); ema != nil {
			trend.EMA = ema
		} else {
			mean := stat.Mean(weights[len(weights)-window:], nil)
			trend.EMA = &mean
		}
		trend.SMA = lastValid(talib.Sma(weights, window))
	}

	switch {
	case trend.Change <= -stableThresholdKg:
		trend.Direction = DirectionLosing
	case trend.Change >= stableThresholdKg:
		trend.Direction = DirectionGaining
	}
	return trend
}

func lastValid(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
