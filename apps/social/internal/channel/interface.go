package channel

import (
	"context"
	"strings"

	"CrewServer/pkg/logger"
)

// Sender 单一平台的投递能力。
// 返回 false 表示投递失败；调用方（通知引擎）吞掉失败不写台账，
// 留给下一次同事件触发时重试。
type Sender interface {
	Send(ctx context.Context, platformUserID, text string) bool
}

// Dispatcher 按收件人 id 的平台前缀路由到对应 Sender。
// id 形如 "tg:123456" / "app:42" / "mail:a@b.c"。
type Dispatcher struct {
	senders map[string]Sender
}

// NewDispatcher 创建空的分发器，由 main 按配置注册各平台。
func NewDispatcher() *Dispatcher {
	return &Dispatcher{senders: make(map[string]Sender)}
}

// Register 注册一个平台前缀的投递实现。
func (d *Dispatcher) Register(prefix string, sender Sender) {
	d.senders[prefix] = sender
}

// Send 路由并投递。没有匹配前缀时视为投递失败。
func (d *Dispatcher) Send(ctx context.Context, userID, text string) bool {
	prefix, _, ok := SplitPlatformID(userID)
	if !ok {
		logger.Warn(ctx, "收件人 id 缺少平台前缀", logger.String("user_id", userID))
		return false
	}

	sender, ok := d.senders[prefix]
	if !ok {
		logger.Warn(ctx, "没有匹配的投递通道",
			logger.String("platform", prefix),
			logger.String("user_id", userID),
		)
		return false
	}

	return sender.Send(ctx, userID, text)
}

// SplitPlatformID 拆分 "platform:rest" 形式的用户 id。
func SplitPlatformID(userID string) (prefix, rest string, ok bool) {
	idx := strings.Index(userID, ":")
	if idx <= 0 || idx == len(userID)-1 {
		return "", "", false
	}
	return userID[:idx], userID[idx+1:], true
}
