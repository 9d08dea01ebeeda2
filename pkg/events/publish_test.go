package events

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/adjust/rmq/v5"
	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// First use opens the queue exactly once even when many goroutines publish
// at the same time, and every event still lands on the queue
func TestPublishEventConcurrentFirstUse(t *testing.T) {
	testConnection := rmq.NewTestConnection()
	redis_client.QueueConnection = testConnection

	const publishers = 25

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			assert.NoError(t, PublishEvent(EventTypeArrivalDetected, &transit.ArrivalEvent{
				VehicleRef: "bus-1",
				StopRef:    "stop-1",
			}))
		}()
	}
	wg.Wait()

	for i := 0; i < publishers; i++ {
		var event Event
		require.NoError(t, json.Unmarshal([]byte(testConnection.GetDelivery(queueName, i)), &event))
		assert.Equal(t, EventTypeArrivalDetected, event.Type)
	}
}
