// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/logger"
)

// ExchangeName amqp topic exchange for clip events.
const ExchangeName = "clipevents"

const publishTimeout = 3 * time.Second

// AMQPPublisher is implemented by *amqp.Channel.
type AMQPPublisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
}

// RabbitMQEventHandler implementation of EventHandler. Sends messages to rabbitmq.
type RabbitMQEventHandler struct {
	channel AMQPPublisher
	logger  logger.Logger
	now     func() time.Time
}

// NewRabbitMQEventHandler constructor for RabbitMQEventHandler.
func NewRabbitMQEventHandler(
	channel AMQPPublisher,
	l logger.Logger,
) RabbitMQEventHandler {
	return RabbitMQEventHandler{
		channel: channel,
		logger:  l,
		now:     time.Now,
	}
}

// Notify implementation of abstract method EventHandler.Notify.
func (h RabbitMQEventHandler) Notify(ev event.Event) {
	fields := map[string]any{
		"event": ev.Name(),
		"time":  h.now().UTC().Format(time.RFC3339),
	}

	switch e := ev.(type) {
	case event.ClipEvent:
		fields["shortcode"] = e.ShortCode()
		fields["protected"] = e.Protected()
		fields["privileged"] = e.Privileged()
	case event.ClipsSweptEvent:
		fields["removed"] = float64(e.Removed())
	case event.APIKeyEvent:
		fields["effective"] = e.Effective()
	default:
		return
	}

	if err := h.publish(ev.Name(), fields); err != nil {
		h.logger.Error("Fail to publish event", "event", ev.Name(), "error", err)
	}
}

func (h RabbitMQEventHandler) publish(routingKey string, fields map[string]any) error {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("can`t build event message: %w", err)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("can`t marshal event message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = h.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/protobuf",
			Timestamp:   h.now(),
			Body:        data,
		},
	)
	if err != nil {
		return fmt.Errorf("can`t publish event: %w", err)
	}

	return nil
}
