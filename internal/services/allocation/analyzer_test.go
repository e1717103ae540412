package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/models"
)

func TestParsePieName(t *testing.T) {
	cases := []struct {
		name     string
		category string
		target   float64
		ok       bool
	}{
		{"Growth (40%)", "Growth", 40, true},
		{"Dividend Income (25.5%)", "Dividend Income", 25.5, true},
		{"Misc", "", 0, false},
		{"Broken (abc%)", "", 0, false},
		{" (40%)", "", 0, false},
		{"Too (Many) (Parens) (40%)", "", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			category, target, ok := ParsePieName(tc.name)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.category, category)
				assert.Equal(t, tc.target, target)
			}
		})
	}
}

func pie(name string, invested float64) models.PieData {
	return models.PieData{Name: name, TotalInvested: invested}
}

func TestAnalyzeBucketsAndDrift(t *testing.T) {
	analyzer := NewAnalyzer(common.NewSilentLogger())

	analysis := analyzer.Analyze([]models.PieData{
		pie("Growth (40%)", 800),
		pie("Income (60%)", 200),
	})
	require.NotNil(t, analysis)

	assert.Equal(t, 40.0, analysis.TargetPercent["Growth"])
	assert.Equal(t, 60.0, analysis.TargetPercent["Income"])
	assert.InDelta(t, 80.0, analysis.CurrentPercent["Growth"], 1e-9)
	assert.InDelta(t, 20.0, analysis.CurrentPercent["Income"], 1e-9)
	assert.InDelta(t, -40.0, analysis.Drift["Growth"], 1e-9)
	assert.InDelta(t, 40.0, analysis.Drift["Income"], 1e-9)
	assert.Equal(t, "+40.00%", analysis.DriftString("Income"))
}

func TestAnalyzeExcludesUnparseableNames(t *testing.T) {
	analyzer := NewAnalyzer(common.NewSilentLogger())

	analysis := analyzer.Analyze([]models.PieData{
		pie("Growth (40%)", 500),
		pie("Misc", 500),
	})
	require.NotNil(t, analysis)

	assert.Len(t, analysis.TargetPercent, 1)
	assert.InDelta(t, 100.0, analysis.CurrentPercent["Growth"], 1e-9,
		"unbucketed pies must not dilute the current allocation base")
}

func TestAnalyzeDuplicateCategoryMergesValuesFirstTargetWins(t *testing.T) {
	analyzer := NewAnalyzer(common.NewSilentLogger())

	analysis := analyzer.Analyze([]models.PieData{
		pie("Growth (40%)", 300),
		pie("Growth (55%)", 200),
	})
	require.NotNil(t, analysis)

	assert.Equal(t, 40.0, analysis.TargetPercent["Growth"], "first parsed target wins")
	assert.Equal(t, 500.0, analysis.CurrentValue["Growth"], "invested values merge")
}

func TestAnalyzeExcludesSentinelPie(t *testing.T) {
	analyzer := NewAnalyzer(common.NewSilentLogger())

	analysis := analyzer.Analyze([]models.PieData{
		pie(OverallSummaryName, 9999),
		pie("Growth (100%)", 100),
	})
	require.NotNil(t, analysis)

	assert.Equal(t, 100.0, analysis.CurrentValue["Growth"])
	assert.Len(t, analysis.CurrentValue, 1)
}

func TestAnalyzeNoBucketsReturnsNil(t *testing.T) {
	analyzer := NewAnalyzer(common.NewSilentLogger())

	assert.Nil(t, analyzer.Analyze(nil))
	assert.Nil(t, analyzer.Analyze([]models.PieData{pie("Misc", 100)}))
}
