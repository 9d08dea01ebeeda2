package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/arrivo/arrivo/pkg/arrivals"
	"github.com/arrivo/arrivo/pkg/events"
	"github.com/arrivo/arrivo/pkg/ml"
	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/telemetry"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/rs/zerolog/log"
)

const queueName = "telemetry-queue"

const numConsumers = 5
const batchSize = 200

// Pipeline is everything a consumer needs to process one location event:
// record the ping, evaluate arrivals, and nudge the retrain scheduler
type Pipeline struct {
	TelemetryStore telemetry.Store
	Detector       *arrivals.Detector
	Scheduler      *ml.Scheduler
}

func StartConsumers(pipeline *Pipeline) {
	log.Info().Msg("Starting telemetry consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(queueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < numConsumers; i++ {
		go startTelemetryConsumer(queue, i, pipeline)
	}
}

func startTelemetryConsumer(queue rmq.Queue, id int, pipeline *Pipeline) {
	log.Info().Msgf("Starting telemetry consumer %d", id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("telemetry-queue-%d", id), batchSize, 2*time.Second, NewBatchConsumer(id, pipeline)); err != nil {
		panic(err)
	}
}

type BatchConsumer struct {
	id       int
	pipeline *Pipeline
}

func NewBatchConsumer(id int, pipeline *Pipeline) *BatchConsumer {
	return &BatchConsumer{id: id, pipeline: pipeline}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	newArrivals := false

	for _, payload := range payloads {
		var locationEvent *VehicleLocationEvent
		if err := json.Unmarshal([]byte(payload), &locationEvent); err != nil {
			log.Error().Err(err).Msg("Failed to decode location event")
			continue
		}

		if consumer.processEvent(locationEvent) {
			newArrivals = true
		}
	}

	// One nudge per batch is plenty, the scheduler coalesces anyway
	if newArrivals && consumer.pipeline.Scheduler != nil {
		consumer.pipeline.Scheduler.NotifyNewData()
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume telemetry event")
		}
	}
}

// processEvent handles a single location event, isolating its failures from
// the rest of the batch. Reports whether an arrival event was created.
func (consumer *BatchConsumer) processEvent(locationEvent *VehicleLocationEvent) bool {
	ctx := context.Background()

	ping := locationEvent.ToPing()

	if err := telemetry.Record(ctx, consumer.pipeline.TelemetryStore, ping); err != nil {
		if errors.Is(err, transit.ErrInvalidInput) {
			log.Warn().Err(err).Str("vehicle", locationEvent.VehicleRef).Msg("Rejected invalid ping")
		} else {
			log.Error().Err(err).Str("vehicle", locationEvent.VehicleRef).Msg("Failed to record ping")
		}
		return false
	}

	arrivalEvent, err := consumer.pipeline.Detector.EvaluatePing(ctx, ping)
	if err != nil {
		log.Error().Err(err).Str("vehicle", ping.VehicleRef).Msg("Arrival detection failed")
		return false
	}

	if arrivalEvent == nil {
		return false
	}

	if err := events.PublishEvent(events.EventTypeArrivalDetected, arrivalEvent); err != nil {
		log.Error().Err(err).Str("vehicle", ping.VehicleRef).Msg("Failed to publish arrival event")
	}

	return true
}
