package kds

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"resto-ops/utils"
)

const brokerQueue = "resto.events"

// brokerEvent adalah envelope yang dikirim ke broker untuk consumer eksternal
// (analytics, notifikasi SMS, dsb) yang tidak memegang koneksi websocket.
type brokerEvent struct {
	Event    string      `json:"event"`
	TenantID uint        `json:"tenant_id"`
	Roles    []string    `json:"roles,omitempty"`
	Data     interface{} `json:"data"`
	SentAt   time.Time   `json:"sent_at"`
}

// AmqpPublisher mem-mirror event hub ke RabbitMQ. Fire-and-forget: semua
// error hanya di-log, tidak pernah dipropagasi ke mutasi yang memicunya.
type AmqpPublisher struct {
	url string
}

func NewAmqpPublisher(url string) *AmqpPublisher {
	return &AmqpPublisher{url: url}
}

func (p *AmqpPublisher) Publish(roles []string, tenantID uint, event string, payload interface{}) {
	body, err := json.Marshal(brokerEvent{
		Event:    event,
		TenantID: tenantID,
		Roles:    roles,
		Data:     payload,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		utils.ErrorLogger.Printf("amqp: error marshaling %s event: %v", event, err)
		return
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		utils.ErrorLogger.Printf("amqp: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		utils.ErrorLogger.Printf("amqp: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable supaya event selamat dari restart broker.
	if _, err := ch.QueueDeclare(brokerQueue, true, false, false, false, nil); err != nil {
		utils.ErrorLogger.Printf("amqp: queue declare failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", brokerQueue, false, false, pub); err != nil {
		utils.ErrorLogger.Printf("amqp: publish %s failed: %v", event, err)
	}
}
