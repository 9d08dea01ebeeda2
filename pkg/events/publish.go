package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/arrivo/arrivo/pkg/redis_client"
)

const queueName = "events-queue"

var queueMutex sync.Mutex
var eventsQueue rmq.Queue

// openQueue opens the events queue on first use. Publishers run on many
// goroutines, so the handle is guarded rather than checked bare.
func openQueue() (rmq.Queue, error) {
	queueMutex.Lock()
	defer queueMutex.Unlock()

	if eventsQueue != nil {
		return eventsQueue, nil
	}

	queue, err := redis_client.QueueConnection.OpenQueue(queueName)
	if err != nil {
		return nil, err
	}

	eventsQueue = queue

	return eventsQueue, nil
}

// PublishEvent pushes an event onto the events queue. Failures are returned
// rather than fatal, a lost notification must never take down ingestion.
func PublishEvent(eventType EventType, body interface{}) error {
	queue, err := openQueue()
	if err != nil {
		return err
	}

	event := Event{
		Type: eventType,
		Body: body,

		CreationDateTime: time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return queue.PublishBytes(eventBytes)
}
