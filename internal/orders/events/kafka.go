package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"shophub/internal/orders/service"

	"github.com/segmentio/kafka-go"
)

type OrderProducer struct {
	writer *kafka.Writer
}

func NewOrderProducer(brokers []string, topic string) *OrderProducer {
	return &OrderProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// PublishOrderEvent пишет событие в топик заказов. Ключ — id заказа,
// чтобы события одного заказа попадали в одну партицию.
func (p *OrderProducer) PublishOrderEvent(ctx context.Context, ev service.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: value,
	})
}

func (p *OrderProducer) Close() error {
	return p.writer.Close()
}
