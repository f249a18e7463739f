package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers generated-plan events.
type Publisher interface {
	PublishWorkoutGenerated(ctx context.Context, event WorkoutGenerated) error
	PublishMealPlanGenerated(ctx context.Context, event MealPlanGenerated) error
}

// NoopPublisher discards events; used when no brokers are configured.
type NoopPublisher struct{}

// PublishWorkoutGenerated performs no action.
func (NoopPublisher) PublishWorkoutGenerated(context.Context, WorkoutGenerated) error { return nil }

// PublishMealPlanGenerated performs no action.
func (NoopPublisher) PublishMealPlanGenerated(context.Context, MealPlanGenerated) error { return nil }

// messageWriter is the subset of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher builds a publisher over the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

// PublishWorkoutGenerated emits a workout.generated message keyed by workout id.
func (p *KafkaPublisher) PublishWorkoutGenerated(ctx context.Context, event WorkoutGenerated) error {
	return p.publish(ctx, TypeWorkoutGenerated, event.WorkoutID, event)
}

// PublishMealPlanGenerated emits a meal_plan.generated message keyed by plan id.
func (p *KafkaPublisher) PublishMealPlanGenerated(ctx context.Context, event MealPlanGenerated) error {
	return p.publish(ctx, TypeMealPlanGenerated, event.PlanID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
