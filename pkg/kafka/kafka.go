package kafka

import (
	"context"
	"fmt"
	"time"

	"CrewServer/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer 封装 kafka-go 的 Writer，按 key 哈希分区。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 创建生产者。
// RequireOne：leader 确认即返回，推送通道可以容忍极小概率丢失。
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			ErrorLogger:  NewZapLoggerAdapter(logger.L()),
		},
	}
}

// Send 发送一条消息。
func (p *Producer) Send(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// Close 关闭底层 Writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ==================== 日志适配 ====================

// ZapLoggerAdapter 把 kafka-go 的 Printf 风格日志接到 zap。
// 挂在 Writer.ErrorLogger 上，所以统一按 Error 级别落盘。
type ZapLoggerAdapter struct {
	l *zap.Logger
}

// NewZapLoggerAdapter 创建适配器。
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{l: l}
}

func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	if a.l == nil {
		return
	}
	a.l.Error(fmt.Sprintf(format, args...))
}
