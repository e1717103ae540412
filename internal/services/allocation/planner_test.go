package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRebalanceProportional(t *testing.T) {
	current := map[string]float64{"A": 800, "B": 200}
	targets := map[string]float64{"A": 50, "B": 50}

	plan, err := PlanRebalance(current, targets, 1000)
	require.NoError(t, err)

	// newTotal = 2000, target values {A: 1000, B: 1000}
	assert.InDelta(t, 200.0, plan["A"], 1e-9)
	assert.InDelta(t, 800.0, plan["B"], 1e-9)
}

func TestPlanRebalanceNeverNegative(t *testing.T) {
	current := map[string]float64{"A": 1200, "B": 200}
	targets := map[string]float64{"A": 50, "B": 50}

	plan, err := PlanRebalance(current, targets, 600)
	require.NoError(t, err)

	assert.Equal(t, 0.0, plan["A"], "category above target receives 0, never negative")
	assert.InDelta(t, 800.0, plan["B"], 1e-9)
}

func TestPlanRebalanceValidation(t *testing.T) {
	valid := map[string]float64{"A": 100}
	targets := map[string]float64{"A": 100}

	_, err := PlanRebalance(nil, targets, 100)
	assert.Error(t, err, "empty current allocation")

	_, err = PlanRebalance(valid, nil, 100)
	assert.Error(t, err, "empty targets")

	_, err = PlanRebalance(valid, targets, 0)
	assert.Error(t, err, "zero capital")

	_, err = PlanRebalance(valid, targets, -50)
	assert.Error(t, err, "negative capital")

	_, err = PlanRebalance(valid, map[string]float64{"B": 100}, 100)
	assert.Error(t, err, "mismatched key sets")

	_, err = PlanRebalance(map[string]float64{"A": 100, "B": 50}, targets, 100)
	assert.Error(t, err, "extra current category")
}
