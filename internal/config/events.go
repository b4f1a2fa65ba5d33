package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/events"
)

// Publisher kinds accepted by EVENTS_PUBLISHER
const (
	PublisherKafka = "kafka"
	PublisherMock  = "mock"
)

// EventConfig selects where import.committed events go
type EventConfig struct {
	Enabled           bool
	Publisher         string
	KafkaBrokers      string
	ImportEventsTopic string
}

// GetKafkaBrokers returns the comma separated broker list, trimmed and without blanks
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher creates an event publisher based on configuration. Import events are
// best effort, so anything short of a working Kafka setup falls back to the in-memory publisher.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Import events disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case PublisherKafka:
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			logger.Warn("No Kafka brokers configured, import events stay in memory")
			return events.NewMockEventPublisher(logger), nil
		}
		logger.Info("Creating Kafka import event publisher",
			"brokers", brokers,
			"topic", c.ImportEventsTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.ImportEventsTopic,
			Logger:       logger,
		})
	case PublisherMock:
		logger.Info("Using mock import event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
