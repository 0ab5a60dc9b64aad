package pkg

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ActivityEvent 一条积分事件，按用户分区
type ActivityEvent struct {
	EventID   string
	EventType string
	UserID    uint64
	Payload   []byte
}

// Message 分区 key 取用户 id，事件 id 与类型放进 header，消费端无需解析 payload 即可去重
func (e ActivityEvent) Message() kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatUint(e.UserID, 10)),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(e.EventID)},
			{Key: HeaderEventType, Value: []byte(e.EventType)},
		},
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ActivityProducer 同步写入，所有副本确认后才返回
type ActivityProducer struct {
	w messageWriter
}

func NewActivityProducer(cfg KafkaConfig) (*ActivityProducer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka: brokers and topic are required")
	}
	return &ActivityProducer{w: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}}, nil
}

func (p *ActivityProducer) Publish(ctx context.Context, events ...ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		msgs[i] = e.Message()
	}
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *ActivityProducer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
