package publisher

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp091.Channel the publisher needs.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type rabbitMQPublisher struct {
	mu       sync.Mutex
	channel  amqpChannel
	exchange string
	Log      *zap.Logger
}

func NewRabbitMQPublisher(connection *amqp091.Connection, exchange string, logger *zap.Logger) (contracts.EventPublisher, error) {
	channel, err := connection.Channel()
	if err != nil {
		return nil, exceptions.ErrRabbitMQOpenChannel(err)
	}
	return newRabbitMQPublisher(channel, exchange, logger)
}

func newRabbitMQPublisher(channel amqpChannel, exchange string, logger *zap.Logger) (*rabbitMQPublisher, error) {
	err := channel.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		_ = channel.Close()
		return nil, exceptions.ErrRabbitMQDeclareExchange(err, exchange)
	}

	return &rabbitMQPublisher{
		channel:  channel,
		exchange: exchange,
		Log:      logger,
	}, nil
}

// Publish sends one event envelope routed by eventType. Delivery is best
// effort: callers log failures and carry on.
func (p *rabbitMQPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	requestID := utils.GetRequestID(ctx)

	event := models.Event{
		ID:         utils.GenerateID(),
		Type:       eventType,
		RequestID:  requestID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Log.Error("rabbitMQPublisher.Publish error marshaling event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventKey, eventType),
			zap.Error(err),
		)
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         eventType,
		Headers: amqp091.Table{
			"message_type": "JSON",
			"request_id":   requestID,
		},
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, eventType, false, false, message)
	p.mu.Unlock()
	if err != nil {
		p.Log.Error("rabbitMQPublisher.Publish error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventKey, eventType),
			zap.String(constvars.LoggingExchangeKey, p.exchange),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, p.exchange)
	}

	p.Log.Debug("rabbitMQPublisher.Publish succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventKey, eventType),
		zap.String(constvars.LoggingExchangeKey, p.exchange),
	)
	return nil
}

func (p *rabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Close()
}
