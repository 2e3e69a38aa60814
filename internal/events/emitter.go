package events

import (
	"encoding/json"
	"strconv"

	"swiftride-rental-service/internal/logger"
)

// Topics names the destination for each event type.
type Topics struct {
	Notification string
	Report       string
	Analytics    string
}

// Emitter publishes rental events keyed by rental id. The orchestrator
// calls it synchronously inside each operation, so for one rental the START
// analytics event is always published before any terminal event; the broker
// preserves that order per key.
type Emitter struct {
	publisher Publisher
	topics    Topics
}

func NewEmitter(publisher Publisher, topics Topics) *Emitter {
	return &Emitter{publisher: publisher, topics: topics}
}

func (e *Emitter) EmitNotification(event NotificationEvent) {
	e.emit(e.topics.Notification, event.RentalID, newEnvelope(TypeNotification, event))
}

func (e *Emitter) EmitReport(event ReportEvent) {
	e.emit(e.topics.Report, event.RentalID, newEnvelope(TypeReport, event))
}

func (e *Emitter) EmitAnalytics(event AnalyticsEvent) {
	e.emit(e.topics.Analytics, event.RentalID, newEnvelope(TypeAnalytics, event))
}

// emit never surfaces an error to the caller: a rental transition must not
// fail because a side-effect event could not be enqueued.
func (e *Emitter) emit(topic string, rentalID int64, env Envelope) {
	value, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to marshal event", "type", env.Type, "rental_id", rentalID, "error", err)
		return
	}
	if err := e.publisher.Publish(topic, strconv.FormatInt(rentalID, 10), value); err != nil {
		logger.Error("Failed to publish event", "type", env.Type, "rental_id", rentalID, "error", err)
	}
}
