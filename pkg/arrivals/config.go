package arrivals

import (
	"time"

	"github.com/arrivo/arrivo/pkg/util"
)

func DetectorConfigFromEnvironment() DetectorConfig {
	config := DefaultDetectorConfig()

	config.ProximityThresholdMeters = util.GetEnvironmentFloatDefault("ARRIVO_PROXIMITY_THRESHOLD_METERS", config.ProximityThresholdMeters)

	dedupeSeconds := util.GetEnvironmentIntDefault("ARRIVO_DEDUPE_WINDOW_SECONDS", int(config.DedupeWindow.Seconds()))
	config.DedupeWindow = time.Duration(dedupeSeconds) * time.Second

	if util.GetEnvironmentDefault("ARRIVO_DETECT_ALL_STOPS", "NO") == "YES" {
		config.DestinationStopsOnly = false
	}

	return config
}
