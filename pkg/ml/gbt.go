package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GBTConfig mirrors the hyperparameters the deployed model has always been
// trained with: 200 estimators, learning rate 0.1, depth 6.
type GBTConfig struct {
	Estimators     int     `json:"estimators"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
}

func DefaultGBTConfig() GBTConfig {
	return GBTConfig{
		Estimators:     200,
		LearningRate:   0.1,
		MaxDepth:       6,
		MinSamplesLeaf: 2,
	}
}

// GBTRegressor is a gradient-boosted ensemble of regression trees fitted on
// squared error. The whole structure serialises to JSON for artifact
// persistence.
type GBTRegressor struct {
	Config GBTConfig `json:"config"`

	// BasePrediction is the mean label, the starting point boosting refines
	BasePrediction float64 `json:"base_prediction"`

	Trees []*treeNode `json:"trees"`
}

type treeNode struct {
	Leaf  bool    `json:"leaf"`
	Value float64 `json:"value,omitempty"`

	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// FitGBT trains an ensemble on the given rows. Fully deterministic: equal
// inputs always produce an identical model.
func FitGBT(config GBTConfig, rows [][]float64, labels []float64) *GBTRegressor {
	model := &GBTRegressor{
		Config:         config,
		BasePrediction: stat.Mean(labels, nil),
	}

	residuals := make([]float64, len(labels))
	predictions := make([]float64, len(labels))
	for i := range labels {
		predictions[i] = model.BasePrediction
		residuals[i] = labels[i] - predictions[i]
	}

	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}

	for t := 0; t < config.Estimators; t++ {
		tree := buildTree(config, rows, residuals, indices, 0)
		model.Trees = append(model.Trees, tree)

		for i := range rows {
			predictions[i] += config.LearningRate * tree.predict(rows[i])
			residuals[i] = labels[i] - predictions[i]
		}
	}

	return model
}

func (m *GBTRegressor) Predict(row []float64) float64 {
	prediction := m.BasePrediction

	for _, tree := range m.Trees {
		prediction += m.Config.LearningRate * tree.predict(row)
	}

	return prediction
}

func (n *treeNode) predict(row []float64) float64 {
	if n.Leaf {
		return n.Value
	}

	if row[n.Feature] <= n.Threshold {
		return n.Left.predict(row)
	}

	return n.Right.predict(row)
}

func buildTree(config GBTConfig, rows [][]float64, targets []float64, indices []int, depth int) *treeNode {
	if depth >= config.MaxDepth || len(indices) < 2*config.MinSamplesLeaf {
		return leafNode(targets, indices)
	}

	feature, threshold, found := bestSplit(config, rows, targets, indices)
	if !found {
		return leafNode(targets, indices)
	}

	var leftIndices, rightIndices []int
	for _, i := range indices {
		if rows[i][feature] <= threshold {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(config, rows, targets, leftIndices, depth+1),
		Right:     buildTree(config, rows, targets, rightIndices, depth+1),
	}
}

func leafNode(targets []float64, indices []int) *treeNode {
	sum := 0.0
	for _, i := range indices {
		sum += targets[i]
	}

	return &treeNode{
		Leaf:  true,
		Value: sum / float64(len(indices)),
	}
}

// bestSplit scans every feature for the threshold minimising the summed
// squared error of the two partitions. Indices are sorted per feature so
// each candidate threshold is scored from running sums in a single pass.
func bestSplit(config GBTConfig, rows [][]float64, targets []float64, indices []int) (int, float64, bool) {
	bestError := math.Inf(1)
	bestFeature := 0
	bestThreshold := 0.0
	found := false

	featureCount := len(rows[indices[0]])
	order := make([]int, len(indices))

	var totalSum, totalSquaredSum float64
	for _, i := range indices {
		totalSum += targets[i]
		totalSquaredSum += targets[i] * targets[i]
	}

	for feature := 0; feature < featureCount; feature++ {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool {
			return rows[order[a]][feature] < rows[order[b]][feature]
		})

		var leftSum, leftSquaredSum float64

		for position := 0; position < len(order)-1; position++ {
			i := order[position]

			leftSum += targets[i]
			leftSquaredSum += targets[i] * targets[i]

			// Splitting is only possible between distinct values
			if rows[i][feature] == rows[order[position+1]][feature] {
				continue
			}

			leftCount := position + 1
			rightCount := len(order) - leftCount
			if leftCount < config.MinSamplesLeaf || rightCount < config.MinSamplesLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSquaredSum := totalSquaredSum - leftSquaredSum

			splitError := (leftSquaredSum - leftSum*leftSum/float64(leftCount)) +
				(rightSquaredSum - rightSum*rightSum/float64(rightCount))

			if splitError < bestError {
				bestError = splitError
				bestFeature = feature
				bestThreshold = rows[i][feature]
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}
