package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// IdentityTTL 身份映射缓存 TTL
	// 映射是 append-only 的，理论上可以永不过期；保留 TTL 只为控制内存。
	IdentityTTL = 7 * 24 * time.Hour

	// PreferenceTTL 通知偏好缓存 TTL
	PreferenceTTL = 1 * time.Hour
	// PreferenceEmptyTTL 通知偏好空值缓存 TTL（用户从未配置过）
	PreferenceEmptyTTL = 10 * time.Minute

	// NotifyDailyCountTTL 当日通知计数 TTL
	// 兜底 48h，真正的归零靠 key 里带的本地日期。
	NotifyDailyCountTTL = 48 * time.Hour
)

// ==================== Key 构造函数 ====================

// IdentityKey 平台账号→规范身份映射 Key: social:identity:{platformUserId}
func IdentityKey(platformUserID string) string {
	return fmt.Sprintf("social:identity:%s", platformUserID)
}

// PreferenceKey 通知偏好缓存 Key: social:pref:{canonicalId}
func PreferenceKey(canonicalID string) string {
	return fmt.Sprintf("social:pref:%s", canonicalID)
}

// NotifyDailyCountKey 当日通知计数 Key: social:notify:count:{canonicalId}:{localDate}
// localDate 用收件人时区的 YYYY-MM-DD，自然实现"本地午夜归零"。
func NotifyDailyCountKey(canonicalID, localDate string) string {
	return fmt.Sprintf("social:notify:count:%s:%s", canonicalID, localDate)
}

// RateLimitIPKey 网关 IP 限流 Key: rate:limit:ip:{ip}
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
