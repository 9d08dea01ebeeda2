package ml

import (
	"github.com/arrivo/arrivo/pkg/util"
)

func TrainerConfigFromEnvironment() TrainerConfig {
	config := DefaultTrainerConfig()

	config.MinTrainingRows = util.GetEnvironmentIntDefault("ARRIVO_MIN_TRAINING_ROWS", config.MinTrainingRows)
	config.HoldoutFraction = util.GetEnvironmentFloatDefault("ARRIVO_HOLDOUT_FRACTION", config.HoldoutFraction)

	config.GBT.Estimators = util.GetEnvironmentIntDefault("ARRIVO_GBT_ESTIMATORS", config.GBT.Estimators)
	config.GBT.MaxDepth = util.GetEnvironmentIntDefault("ARRIVO_GBT_MAX_DEPTH", config.GBT.MaxDepth)
	config.GBT.LearningRate = util.GetEnvironmentFloatDefault("ARRIVO_GBT_LEARNING_RATE", config.GBT.LearningRate)

	return config
}
