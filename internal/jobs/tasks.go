package jobs

import (
	"time"

	"github.com/collectionvault/index-engine/internal/mbus"
)

// defaultMessageTTL and defaultMaxQueueLength back the per-queue x-message-ttl
// and x-max-length arguments; QueueSpecs applies both to every queue it
// returns.
const (
	defaultMessageTTL    = 24 * time.Hour
	defaultMaxQueueLength = 10000
)

// QueueSpecs returns the durable, per-job-type queue declarations bound to
// the topic exchange, plus the broader event queues (creation/bulk/image
// processing/library scan) the routing-key table names beyond the four job
// types.
func QueueSpecs() []mbus.QueueSpec {
	routingKeys := []string{
		mbus.RoutingCollectionScan,
		mbus.RoutingThumbnailGenerate,
		mbus.RoutingCacheGenerate,
		mbus.RoutingCollectionCreation,
		mbus.RoutingBulkOperation,
		mbus.RoutingImageProcessing,
		mbus.RoutingLibraryScanQueue,
	}

	specs := make([]mbus.QueueSpec, 0, len(routingKeys))
	for _, key := range routingKeys {
		specs = append(specs, mbus.QueueSpec{
			Name:       "jobs." + key,
			RoutingKey: key,
			TTL:        defaultMessageTTL,
			MaxLength:  defaultMaxQueueLength,
		})
	}
	return specs
}
