package routes

import (
	"github.com/arrivo/arrivo/pkg/arrivals"
	"github.com/arrivo/arrivo/pkg/ml"
	"github.com/arrivo/arrivo/pkg/stops"
	"github.com/arrivo/arrivo/pkg/telemetry"
)

type Dependencies struct {
	TelemetryStore telemetry.Store
	ArrivalStore   arrivals.Store
	StopRepository stops.Repository
	ETARecordStore ml.ETARecordStore
	ArtifactStore  ml.ArtifactStore

	Predictor *ml.Predictor
}

var dependencies Dependencies

func Setup(deps Dependencies) {
	dependencies = deps
}
