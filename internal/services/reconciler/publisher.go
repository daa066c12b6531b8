package reconciler

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
)

// AMQPPublisher публикует неразрешённые события вебхука в очередь
// ручной реконсиляции через RabbitMQ.
type AMQPPublisher struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewAMQPPublisher создает AMQPPublisher с ключом маршрутизации очереди
// ручной реконсиляции.
func NewAMQPPublisher(channel *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: rabbitmq.GetReconcileQueues()[0].RoutingKey,
	}
}

// PublishUnresolved отправляет событие в очередь ручной реконсиляции.
func (p *AMQPPublisher) PublishUnresolved(event UnresolvedEvent) error {
	return rabbitmq.PublishMessage(p.channel, p.exchange, p.routingKey, event)
}
