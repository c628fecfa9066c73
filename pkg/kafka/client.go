// Package kafka 提供了分析事件流的 Kafka 生产者。
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// UsageEvent 代表一次检索或问答操作的分析事件。
// 事件上报是尽力而为的：失败只记录日志，绝不影响请求处理。
type UsageEvent struct {
	Type       string    `json:"type"` // "search" 或 "chat"
	UserID     uint      `json:"user_id"`
	Query      string    `json:"query"`
	PaperCount int       `json:"paper_count"`
	WebCount   int       `json:"web_count"`
	Accepted   bool      `json:"accepted"`
	OccurredAt time.Time `json:"occurred_at"`
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。Brokers 为空时跳过初始化，事件上报被禁用。
func InitProducer(cfg config.KafkaConfig) {
	if cfg.Brokers == "" {
		log.Info("Kafka brokers 未配置，分析事件上报已禁用")
		return
	}
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// PublishUsageEvent 发送一个分析事件到 Kafka。生产者未初始化时为 no-op。
func PublishUsageEvent(event UsageEvent) {
	if producer == nil {
		return
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("序列化分析事件失败: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := producer.WriteMessages(ctx, kafka.Message{Value: eventBytes}); err != nil {
		log.Warnf("发送分析事件失败: %v", err)
	}
}
