package events

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"swiftride-rental-service/internal/logger"
)

// Publisher is the transport used by the emitter. Messages with the same key
// must be delivered in publish order.
type Publisher interface {
	Publish(topic, key string, value []byte) error
	Close()
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher connects a producer to the broker and starts draining
// delivery reports. Per-key ordering comes from Kafka's keyed partitioning.
func NewKafkaPublisher(brokers, clientID string) (Publisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         clientID,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	// Delivery is fire-and-forget from the orchestrator's point of view;
	// failures only get logged here.
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Error("Event delivery failed",
						"topic", *ev.TopicPartition.Topic,
						"key", string(ev.Key),
						"error", ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Error("Kafka producer error", "error", ev)
			}
		}
	}()

	return &kafkaPublisher{producer: p}, nil
}

func (k *kafkaPublisher) Publish(topic, key string, value []byte) error {
	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
}

func (k *kafkaPublisher) Close() {
	k.producer.Flush(5000)
	k.producer.Close()
}
