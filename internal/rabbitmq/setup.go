package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// ContactExchange exchange для заявок с формы обратной связи.
const ContactExchange = "contact"

// ForwardRoutingKey ключ маршрутизации заявок, ожидающих пересылки.
const ForwardRoutingKey = "forward"

// QueueConfig очередь и ключ, которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ContactQueues возвращает очереди exchange заявок.
func ContactQueues(forwardQueue string) []QueueConfig {
	return []QueueConfig{
		{QueueName: forwardQueue, RoutingKey: ForwardRoutingKey},
	}
}

// SetupChannel открывает канал и объявляет durable direct exchange с привязанными очередями.
// prefetch ограничивает число неподтверждённых сообщений на канал, 0 оставляет значение брокера.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig, prefetch int) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declare(ch, exchange, queues, prefetch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func declare(ch *amqp.Channel, exchange string, queues []QueueConfig, prefetch int) error {
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeDirect,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s with routing key %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
