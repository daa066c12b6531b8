package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetReconcileQueues возвращает очереди ручной реконсиляции вебхуков.
func GetReconcileQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "reconcile.unresolved", RoutingKey: "unresolved"},
	}
}

// SetupQueues объявляет exchange, очереди и их привязки.
func SetupQueues(ch *amqp.Channel, exchange string, queues []QueueConfig) error {
	const op = "rabbitmq.SetupQueues"

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
