package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"bayline/queue-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams record mutations to Kafka for downstream consumers
// (reporting, notifications). The queue itself never depends on it: every
// send is fire-and-forget with a logged failure.
type Producer interface {
	RecordChanged(ctx context.Context, eventType string, record models.ServiceRecord)
	Close() error
}

type recordEvent struct {
	Type       string               `json:"type"`
	Record     models.ServiceRecord `json:"record"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}
	log.Printf("INFO: kafka producer ready, topic %s", topic)
	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) RecordChanged(ctx context.Context, eventType string, record models.ServiceRecord) {
	payload, err := json.Marshal(recordEvent{
		Type:       eventType,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("ERROR: event marshal: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(record.ID, 10)),
		Value: payload,
	})
	if err != nil {
		log.Printf("ERROR: event publish %s for record %d: %v", eventType, record.ID, err)
	}
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// NopProducer is used when no brokers are configured.
type NopProducer struct{}

func (NopProducer) RecordChanged(context.Context, string, models.ServiceRecord) {}

func (NopProducer) Close() error { return nil }
