package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-registration/internal/config"
	"ms-registration/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Events adapts the producer to the per-flow publisher interfaces. Payloads
// carry only what downstream analytics need, never OTP material.
type Events struct {
	Producer *Producer
	Topics   config.TopicConfig
}

func NewEvents(producer *Producer, topics config.TopicConfig) *Events {
	return &Events{Producer: producer, Topics: topics}
}

type registrationEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Registered bool      `json:"registered"`
	At         time.Time `json:"at"`
}

type checkInEvent struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

type orderEvent struct {
	UserID string             `json:"user_id"`
	Lines  []models.OrderLine `json:"lines"`
	At     time.Time          `json:"at"`
}

func (e *Events) PublishRegistrationCompleted(user models.User) error {
	value, err := json.Marshal(registrationEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Registered: true,
		At:         time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return e.Producer.Publish(e.Topics.RegistrationCompleted, user.ID, value)
}

func (e *Events) PublishCheckedIn(user models.User) error {
	value, err := json.Marshal(checkInEvent{UserID: user.ID, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return e.Producer.Publish(e.Topics.AttendanceCheckedIn, user.ID, value)
}

func (e *Events) PublishOrderPlaced(userID string, lines []models.OrderLine) error {
	value, err := json.Marshal(orderEvent{UserID: userID, Lines: lines, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return e.Producer.Publish(e.Topics.OrderPlaced, userID, value)
}
