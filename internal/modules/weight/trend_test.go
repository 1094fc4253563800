package weight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTrend_Empty(t *testing.T) {
	trend := ComputeTrend(nil, 7)
	assert.Nil(t, trend.SMA)
	assert.Nil(t, trend.EMA)
	assert.Equal(t, DirectionStable, trend.Direction)
	assert.Equal(t, 0, trend.Points)
}

func TestComputeTrend_ShortHistoryFallsBackToMean(t *testing.T) {
	trend := ComputeTrend([]float64{80, 79, 78}, 7)

	assert.Nil(t, trend.SMA)
	require.NotNil(t, trend.EMA)
	assert.InDelta(t, 79.0, *trend.EMA, 1e-9)
	assert.InDelta(t, -2.0, trend.Change, 1e-9)
	assert.Equal(t, 78.0, trend.Latest)
	assert.Equal(t, DirectionLosing, trend.Direction)
}

func TestComputeTrend_FullWindow(t *testing.T) {
	weights := []float64{70, 70.2, 70.4, 70.6, 70.8}
	trend := ComputeTrend(weights, 3)

	require.NotNil(t, trend.SMA)
	assert.InDelta(t, 70.6, *trend.SMA, 1e-9)
	require.NotNil(t, trend.EMA)
	assert.Greater(t, *trend.EMA, 70.4)
	assert.LessOrEqual(t, *trend.EMA, 70.8)
	assert.Equal(t, DirectionGaining, trend.Direction)
}

func TestComputeTrend_Stable(t *testing.T) {
	trend := ComputeTrend([]float64{65, 65.1, 64.95, 65.05}, 2)
	assert.Equal(t, DirectionStable, trend.Direction)
	assert.Equal(t, 2, trend.Window)
}

func TestComputeTrend_InvalidWindowUsesDefault(t *testing.T) {
	trend := ComputeTrend([]float64{65}, 0)
	assert.Equal(t, DefaultTrendWindow, trend.Window)
}
