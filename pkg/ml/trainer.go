package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/arrivo/arrivo/pkg/features"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const splitSeed = 42

type TrainerConfig struct {
	// MinTrainingRows rejects near-empty datasets outright instead of
	// fitting a meaningless model
	MinTrainingRows int

	// HoldoutFraction of rows is withheld from fitting and used for the
	// published validation error
	HoldoutFraction float64

	GBT GBTConfig
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinTrainingRows: 10,
		HoldoutFraction: 0.2,
		GBT:             DefaultGBTConfig(),
	}
}

// Train fits a model on the dataset and wraps it into an artifact together
// with its schema version and holdout mean absolute error. The split is
// seeded so identical datasets always reproduce the same artifact.
func Train(config TrainerConfig, dataset []TrainingRow, dataHighWaterMark time.Time) (*ModelArtifact, error) {
	if len(dataset) < config.MinTrainingRows {
		return nil, fmt.Errorf("%w: %d training rows available, need at least %d", transit.ErrInsufficientData, len(dataset), config.MinTrainingRows)
	}

	rows := make([][]float64, len(dataset))
	labels := make([]float64, len(dataset))
	for i, trainingRow := range dataset {
		input, err := trainingRow.Vector.ModelInput(features.SchemaV1)
		if err != nil {
			return nil, err
		}

		rows[i] = input
		labels[i] = trainingRow.LabelMinutes
	}

	trainRows, trainLabels, holdoutRows, holdoutLabels := split(config.HoldoutFraction, rows, labels)

	startTime := time.Now()
	model := FitGBT(config.GBT, trainRows, trainLabels)
	log.Info().
		Int("trainRows", len(trainRows)).
		Int("holdoutRows", len(holdoutRows)).
		Str("duration", time.Since(startTime).String()).
		Msg("Fitted model")

	validationMAE := meanAbsoluteError(model, holdoutRows, holdoutLabels)

	parameters, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}

	return &ModelArtifact{
		PrimaryIdentifier: uuid.NewString(),

		SchemaVersion:     features.SchemaV1,
		TrainedAt:         time.Now(),
		DataHighWaterMark: dataHighWaterMark,

		ValidationMAE: validationMAE,
		TrainingRows:  len(dataset),

		SerializedParameters: parameters,
	}, nil
}

func split(holdoutFraction float64, rows [][]float64, labels []float64) ([][]float64, []float64, [][]float64, []float64) {
	random := rand.New(rand.NewSource(splitSeed))
	permutation := random.Perm(len(rows))

	holdoutCount := int(float64(len(rows)) * holdoutFraction)
	if holdoutCount < 1 {
		holdoutCount = 1
	}

	var trainRows, holdoutRows [][]float64
	var trainLabels, holdoutLabels []float64

	for position, i := range permutation {
		if position < holdoutCount {
			holdoutRows = append(holdoutRows, rows[i])
			holdoutLabels = append(holdoutLabels, labels[i])
		} else {
			trainRows = append(trainRows, rows[i])
			trainLabels = append(trainLabels, labels[i])
		}
	}

	return trainRows, trainLabels, holdoutRows, holdoutLabels
}

func meanAbsoluteError(model *GBTRegressor, rows [][]float64, labels []float64) float64 {
	if len(rows) == 0 {
		return 0
	}

	absoluteErrors := make([]float64, len(rows))
	for i, row := range rows {
		absoluteErrors[i] = math.Abs(model.Predict(row) - labels[i])
	}

	return stat.Mean(absoluteErrors, nil)
}
