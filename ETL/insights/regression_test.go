package insights

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

func TestLinearRegression_PerfectFit(t *testing.T) {
	points := []DataPoint{{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 5}, {X: 3, Y: 7}}

	result, err := LinearRegression(points)
	require.NoError(t, err)

	assert.Equal(t, 2.0, result.A)
	assert.Equal(t, 1.0, result.B)
	assert.Equal(t, 1.0, result.R)
	assert.Equal(t, 1.0, result.R2)
	assert.Equal(t, 4, result.Points)
	assert.Equal(t, 9.0, Predict(result, 4))
}

func TestLinearRegression_Errors(t *testing.T) {
	_, err := LinearRegression([]DataPoint{{X: 1, Y: 1}})
	assert.Error(t, err)

	_, err = LinearRegression([]DataPoint{{X: 1, Y: 1}, {X: 1, Y: 2}})
	assert.Error(t, err, "одинаковые X не позволяют вычислить наклон")
}

func TestLinearRegression_ConstantY(t *testing.T) {
	result, err := LinearRegression([]DataPoint{{X: 0, Y: 4}, {X: 1, Y: 4}, {X: 2, Y: 4}})
	require.NoError(t, err)
	assert.Zero(t, result.A)
	assert.Zero(t, result.R)
}

func TestRoundToThousandth(t *testing.T) {
	assert.Equal(t, 1.235, RoundToThousandth(1.23456))
	assert.Equal(t, -0.5, RoundToThousandth(-0.49999))
}

func TestEngagementPoints(t *testing.T) {
	points := EngagementPoints([]models.UnifiedRecord{
		{Rating: 4.0, ReviewCount: 99},
		{Rating: 0, ReviewCount: 1000},
		{Rating: 3.0, ReviewCount: 0},
	})

	require.Len(t, points, 2)
	assert.InDelta(t, 2.0, points[0].X, 1e-12)
	assert.Equal(t, 4.0, points[0].Y)
	assert.Zero(t, points[1].X)
}

func TestAnalyzeEngagement(t *testing.T) {
	ec, err := AnalyzeEngagement(sampleDataset(), 0.95)
	require.NoError(t, err)

	assert.Equal(t, 5, ec.Model.Points)
	require.Len(t, ec.Estimates, len(reviewTiers))
	for _, e := range ec.Estimates {
		assert.LessOrEqual(t, e.CILower, e.Rating)
		assert.GreaterOrEqual(t, e.CIUpper, e.Rating)
		assert.False(t, math.IsNaN(e.Rating))
	}

	_, err = AnalyzeEngagement(NewDataset(nil), 0.95)
	assert.Error(t, err)
}
