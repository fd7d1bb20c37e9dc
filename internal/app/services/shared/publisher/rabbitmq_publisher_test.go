package publisher

import (
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	declared   []string
	published  []amqp091.Publishing
	keys       []string
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher_PublishEnvelope(t *testing.T) {
	channel := &fakeChannel{}
	p, err := newRabbitMQPublisher(channel, "ambica.events", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"ambica.events:topic"}, channel.declared)

	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")
	err = p.Publish(ctx, constvars.EventAppointmentBooked, map[string]string{"appointment_id": "a1"})
	require.NoError(t, err)

	require.Len(t, channel.published, 1)
	assert.Equal(t, "ambica.events/"+constvars.EventAppointmentBooked, channel.keys[0])
	assert.Equal(t, constvars.MIMEApplicationJSON, channel.published[0].ContentType)

	var event models.Event
	require.NoError(t, json.Unmarshal(channel.published[0].Body, &event))
	assert.Equal(t, constvars.EventAppointmentBooked, event.Type)
	assert.Equal(t, "req-1", event.RequestID)
	assert.NotEmpty(t, event.ID)
}

func TestRabbitMQPublisher_DeclareFailureClosesChannel(t *testing.T) {
	channel := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newRabbitMQPublisher(channel, "ambica.events", zap.NewNop())
	require.Error(t, err)
	assert.True(t, channel.closed)
}

func TestRabbitMQPublisher_PublishFailure(t *testing.T) {
	channel := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newRabbitMQPublisher(channel, "ambica.events", zap.NewNop())
	require.NoError(t, err)

	err = p.Publish(context.Background(), constvars.EventPaymentCompleted, nil)
	assert.Error(t, err)
}
