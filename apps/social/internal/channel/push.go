package channel

import (
	"context"
	"encoding/json"
	"time"

	"CrewServer/pkg/kafka"
	"CrewServer/pkg/logger"
)

// OnlineSender 在线直投能力，由网关的 WebSocket 连接管理器实现。
// 返回成功入队的设备数。
type OnlineSender interface {
	SendToUser(userID string, msg []byte) int
}

// appPushSender app: 前缀的投递实现。
// 先尝试 WebSocket 在线直投；用户不在线时发到 Kafka 推送主题，
// 由移动端推送管道（外部系统）消费后走厂商通道。
type appPushSender struct {
	online   OnlineSender
	producer *kafka.Producer
}

// NewAppPushSender 创建 app 平台投递实例。
// online 可以为 nil（网关未运行时只走 Kafka）。
func NewAppPushSender(online OnlineSender, producer *kafka.Producer) Sender {
	return &appPushSender{online: online, producer: producer}
}

type pushMessage struct {
	UserID string    `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Send 投递到 app 用户。
func (s *appPushSender) Send(ctx context.Context, platformUserID, text string) bool {
	payload, err := json.Marshal(pushMessage{
		UserID: platformUserID,
		Text:   text,
		SentAt: time.Now(),
	})
	if err != nil {
		return false
	}

	// 在线直投成功就不再走推送管道，避免同一条消息响两次
	if s.online != nil && s.online.SendToUser(platformUserID, payload) > 0 {
		return true
	}

	if s.producer == nil {
		return false
	}
	if err := s.producer.Send(ctx, platformUserID, payload); err != nil {
		logger.Warn(ctx, "推送消息写入 Kafka 失败",
			logger.String("user_id", platformUserID),
			logger.ErrorField("error", err),
		)
		return false
	}
	return true
}
