package realtime

import (
	"encoding/json"
	"sync"

	"github.com/adjust/rmq/v5"
	"github.com/arrivo/arrivo/pkg/redis_client"
)

var publishQueueMutex sync.Mutex
var publishQueue rmq.Queue

// openPublishQueue opens the telemetry queue on first use. The API serves
// ingestion from concurrent handlers, so the handle is guarded.
func openPublishQueue() (rmq.Queue, error) {
	publishQueueMutex.Lock()
	defer publishQueueMutex.Unlock()

	if publishQueue != nil {
		return publishQueue, nil
	}

	queue, err := redis_client.QueueConnection.OpenQueue(queueName)
	if err != nil {
		return nil, err
	}

	publishQueue = queue

	return publishQueue, nil
}

// PublishLocationEvent pushes an inbound location update onto the telemetry
// queue for the consumers to process
func PublishLocationEvent(locationEvent *VehicleLocationEvent) error {
	queue, err := openPublishQueue()
	if err != nil {
		return err
	}

	eventJson, err := json.Marshal(locationEvent)
	if err != nil {
		return err
	}

	return queue.PublishBytes(eventJson)
}
