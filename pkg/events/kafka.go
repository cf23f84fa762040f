package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/pkg/logger"
)

// Message 外发的领域事件
type Message struct {
	Key     string
	Type    string
	Payload []byte
	Time    time.Time
}

// Sink 事件投递目标
type Sink interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// KafkaSink 同步写 Kafka，失败由调用方重试
type KafkaSink struct {
	w *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaSink{w: w}
}

func (k *KafkaSink) Publish(ctx context.Context, msgs ...Message) error {
	out := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		out[i] = kafka.Message{
			Key:     []byte(m.Key),
			Value:   m.Payload,
			Time:    m.Time,
			Headers: []kafka.Header{{Key: "type", Value: []byte(m.Type)}},
		}
	}
	return k.w.WriteMessages(ctx, out...)
}

func (k *KafkaSink) Close() error { return k.w.Close() }

// LogSink 未启用 Kafka 时只记录日志
type LogSink struct{}

func (LogSink) Publish(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		logger.Info("event", zap.String("type", m.Type), zap.String("key", m.Key), zap.ByteString("payload", m.Payload))
	}
	return nil
}

func (LogSink) Close() error { return nil }
