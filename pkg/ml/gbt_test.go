package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticRows builds a simple learnable relationship: the label is half the
// first column plus the second
func syntheticRows(count int) ([][]float64, []float64) {
	rows := make([][]float64, count)
	labels := make([]float64, count)

	for i := 0; i < count; i++ {
		a := float64(i % 17)
		b := float64(i % 5)

		rows[i] = []float64{a, b}
		labels[i] = a/2 + b
	}

	return rows, labels
}

func smallGBTConfig() GBTConfig {
	return GBTConfig{
		Estimators:     25,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 2,
	}
}

func TestFitGBTLearnsTrainingData(t *testing.T) {
	rows, labels := syntheticRows(100)

	model := FitGBT(smallGBTConfig(), rows, labels)

	for i, row := range rows {
		assert.InDelta(t, labels[i], model.Predict(row), 1.5)
	}
}

func TestFitGBTIsDeterministic(t *testing.T) {
	rows, labels := syntheticRows(60)

	first, err := json.Marshal(FitGBT(smallGBTConfig(), rows, labels))
	require.NoError(t, err)

	second, err := json.Marshal(FitGBT(smallGBTConfig(), rows, labels))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGBTSerialisationRoundTrip(t *testing.T) {
	rows, labels := syntheticRows(60)

	model := FitGBT(smallGBTConfig(), rows, labels)

	serialised, err := json.Marshal(model)
	require.NoError(t, err)

	var restored *GBTRegressor
	require.NoError(t, json.Unmarshal(serialised, &restored))

	for _, row := range rows {
		assert.Equal(t, model.Predict(row), restored.Predict(row))
	}
}

// A single clean step in the label must be found as the split boundary and
// fitted tightly on both sides
func TestFitGBTSplitsOnStepBoundary(t *testing.T) {
	var rows [][]float64
	var labels []float64

	for x := 1; x <= 10; x++ {
		rows = append(rows, []float64{float64(x), 0})

		if x <= 5 {
			labels = append(labels, 0)
		} else {
			labels = append(labels, 12)
		}
	}

	config := smallGBTConfig()
	config.Estimators = 40

	model := FitGBT(config, rows, labels)

	assert.InDelta(t, 0, model.Predict([]float64{3, 0}), 0.5)
	assert.InDelta(t, 12, model.Predict([]float64{8, 0}), 0.5)
}

func TestFitGBTConstantLabels(t *testing.T) {
	rows := [][]float64{{1, 0}, {2, 0}, {3, 0}, {4, 0}}
	labels := []float64{7, 7, 7, 7}

	model := FitGBT(smallGBTConfig(), rows, labels)

	assert.InDelta(t, 7, model.Predict([]float64{2.5, 0}), 0.0001)
}
