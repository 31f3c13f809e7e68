package config

import "time"

// FederationConfig 外部联邦服务配置。
// 该服务负责回答"这个平台账号还绑定了哪些其他平台账号"。
// BaseURL 为空表示不接联邦，身份解析退化为"各平台各自独立"。
type FederationConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultFederationConfig 返回默认配置（不接联邦）。
func DefaultFederationConfig() FederationConfig {
	return FederationConfig{
		BaseURL: "",
		Timeout: 2 * time.Second,
	}
}

// ChannelConfig 投递通道配置。
type ChannelConfig struct {
	// Telegram Bot API
	TelegramToken   string        `json:"telegramToken" yaml:"telegramToken" mapstructure:"telegramToken"`
	TelegramTimeout time.Duration `json:"telegramTimeout" yaml:"telegramTimeout" mapstructure:"telegramTimeout"`

	// SMTP（mail: 前缀）
	SMTPHost string `json:"smtpHost" yaml:"smtpHost" mapstructure:"smtpHost"`
	SMTPPort int    `json:"smtpPort" yaml:"smtpPort" mapstructure:"smtpPort"`
	SMTPUser string `json:"smtpUser" yaml:"smtpUser" mapstructure:"smtpUser"`
	SMTPPass string `json:"smtpPass" yaml:"smtpPass" mapstructure:"smtpPass"`
	SMTPFrom string `json:"smtpFrom" yaml:"smtpFrom" mapstructure:"smtpFrom"`
}

// DefaultChannelConfig 返回本地开发的默认配置。
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		TelegramTimeout: 5 * time.Second,
		SMTPHost:        "127.0.0.1",
		SMTPPort:        25,
		SMTPFrom:        "noreply@crew.local",
	}
}

// NotifyConfig 通知引擎配置。
type NotifyConfig struct {
	// ReminderSweepInterval 活动提醒扫描周期
	ReminderSweepInterval time.Duration `json:"reminderSweepInterval" yaml:"reminderSweepInterval" mapstructure:"reminderSweepInterval"`
	// ReminderWindow 处理窗口宽度（前后对称，容忍扫描抖动）
	ReminderWindow time.Duration `json:"reminderWindow" yaml:"reminderWindow" mapstructure:"reminderWindow"`
}

// DefaultNotifyConfig 返回默认配置。
func DefaultNotifyConfig() NotifyConfig {
	return NotifyConfig{
		ReminderSweepInterval: 10 * time.Minute,
		ReminderWindow:        10 * time.Minute,
	}
}

// GatewayConfig 网关配置。
type GatewayConfig struct {
	Addr          string  `json:"addr" yaml:"addr" mapstructure:"addr"`
	JWTSecret     string  `json:"jwtSecret" yaml:"jwtSecret" mapstructure:"jwtSecret"`
	RateLimitRPS  float64 `json:"rateLimitRps" yaml:"rateLimitRps" mapstructure:"rateLimitRps"`    // 每客户端每秒令牌数
	RateLimitBurst int    `json:"rateLimitBurst" yaml:"rateLimitBurst" mapstructure:"rateLimitBurst"` // 桶容量
	SnowflakeNode int64   `json:"snowflakeNode" yaml:"snowflakeNode" mapstructure:"snowflakeNode"`
}

// DefaultGatewayConfig 返回本地开发的默认配置。
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Addr:           ":8080",
		JWTSecret:      "dev-secret-change-me",
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		SnowflakeNode:  1,
	}
}
