package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// First use opens the queue exactly once even when concurrent API handlers
// publish at the same time, and no location event is lost
func TestPublishLocationEventConcurrentFirstUse(t *testing.T) {
	testConnection := rmq.NewTestConnection()
	redis_client.QueueConnection = testConnection

	const publishers = 25

	recordedAt := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			assert.NoError(t, PublishLocationEvent(&VehicleLocationEvent{
				VehicleRef: "bus-1",
				Location:   *transit.NewLocation(-0.1278, 51.5074),
				RecordedAt: recordedAt,
			}))
		}()
	}
	wg.Wait()

	for i := 0; i < publishers; i++ {
		var locationEvent VehicleLocationEvent
		require.NoError(t, json.Unmarshal([]byte(testConnection.GetDelivery(queueName, i)), &locationEvent))
		assert.Equal(t, "bus-1", locationEvent.VehicleRef)
	}
}
