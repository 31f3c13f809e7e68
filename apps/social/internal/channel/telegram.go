package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CrewServer/config"
	"CrewServer/pkg/logger"

	"github.com/sony/gobreaker"
)

// telegramSender tg: 前缀的投递实现，走 Bot API sendMessage。
// 外层套熔断器：Bot API 持续超时/报错时快速失败，
// 不让一次大规模 fan-out 吊死在逐个等超时上。
type telegramSender struct {
	token   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewTelegramSender 创建 Telegram 投递实例。
func NewTelegramSender(cfg config.ChannelConfig) Sender {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telegram-send",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	timeout := cfg.TelegramTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &telegramSender{
		token:   cfg.TelegramToken,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type telegramSendBody struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send 发送文本到指定 chat。
func (s *telegramSender) Send(ctx context.Context, platformUserID, text string) bool {
	_, chatID, ok := SplitPlatformID(platformUserID)
	if !ok {
		return false
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.doSend(ctx, chatID, text)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			logger.Warn(ctx, "Telegram 熔断器开启，跳过发送",
				logger.String("chat_id", chatID),
			)
			return false
		}
		logger.Warn(ctx, "Telegram 发送失败",
			logger.String("chat_id", chatID),
			logger.ErrorField("error", err),
		)
		return false
	}
	return true
}

func (s *telegramSender) doSend(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(telegramSendBody{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage status %d", resp.StatusCode)
	}
	return nil
}
