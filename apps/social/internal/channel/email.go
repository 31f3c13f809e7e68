package channel

import (
	"context"

	"CrewServer/config"
	"CrewServer/pkg/logger"

	"gopkg.in/gomail.v2"
)

// emailSender mail: 前缀的投递实现，直接走 SMTP。
// 量级很低（主要是活动提醒的邮件兜底），不做连接复用。
type emailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender 创建邮件投递实例。
func NewEmailSender(cfg config.ChannelConfig) Sender {
	return &emailSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}
}

// Send 发送纯文本邮件。
func (s *emailSender) Send(ctx context.Context, platformUserID, text string) bool {
	_, addr, ok := SplitPlatformID(platformUserID)
	if !ok {
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", addr)
	m.SetHeader("Subject", "Crew 通知")
	m.SetBody("text/plain", text)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Warn(ctx, "邮件发送失败",
			logger.String("to", addr),
			logger.ErrorField("error", err),
		)
		return false
	}
	return true
}
