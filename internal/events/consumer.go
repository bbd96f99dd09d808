package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Decode 解析一条事件消息，类型未知时返回错误
func Decode(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("排班事件反序列化失败: %w", err)
	}

	switch event.Type {
	case TypeAssignmentCreated, TypeAssignmentDeleted:
		return event, nil
	default:
		return Event{}, fmt.Errorf("不支持的事件类型 %q", event.Type)
	}
}

// Consume 持续消费队列中的事件直到 ctx 结束。
// 无法解析的消息直接丢弃，handle 返回错误时消息重新入队
func Consume(ctx context.Context, ch *amqp.Channel, queue string, handle func(Event) error) error {
	msgs, err := ch.Consume(
		queue,
		"",    // 由 RabbitMQ 自动分配消费者标识
		false, // 手动确认
		false, // 不独占队列
		false, // RabbitMQ 不支持 noLocal
		false, // 等待 RabbitMQ 响应
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("队列 %s 的消费通道已关闭", queue)
			}

			event, err := Decode(msg.Body)
			if err != nil {
				slog.Error("无法解析排班事件", "error", err)
				_ = msg.Nack(false, false)
				continue
			}

			if err := handle(event); err != nil {
				slog.Error("处理排班事件失败", "type", event.Type, "id", event.Assignment.ID, "error", err)
				_ = msg.Nack(false, true) // 将消息重新入队
				continue
			}

			_ = msg.Ack(false)
		}
	}
}
