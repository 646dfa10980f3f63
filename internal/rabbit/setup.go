// setup.go
package rabbit

import (
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"order-timeline-service/internal/service"
)

// SetupConsumers binds this service's queue to the status-update fanout
// exchange and starts the consume loop.
func SetupConsumers(ch *amqp091.Channel, svc *service.TimelineService, log *zap.Logger) {
	consumer := NewStatusUpdateConsumer(svc, log)

	// 1. Declare the queue, exclusive to this service.
	q, err := ch.QueueDeclare(
		"order_timeline_service_status",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("declaring queue", zap.Error(err))
		return
	}

	// 2. Bind to the fanout exchange (routing key ignored).
	err = ch.QueueBind(
		q.Name,
		"",
		"order_status_updated",
		false,
		nil,
	)
	if err != nil {
		log.Error("binding exchange", zap.Error(err))
		return
	}

	// 3. Consume.
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("consuming queue", zap.Error(err))
		return
	}

	go func() {
		for m := range msgs {
			_ = consumer.Handle(m.Body)
		}
	}()

	log.Info("subscribed to exchange order_status_updated (fanout)")
}
