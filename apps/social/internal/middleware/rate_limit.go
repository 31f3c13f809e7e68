package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"CrewServer/consts"
	rediskey "CrewServer/consts/redisKey"
	"CrewServer/pkg/logger"
)

// ==================== Redis 令牌桶 Lua 脚本 ====================

// luaTokenBucket 原子性地更新令牌桶并判断是否允许通过。
//
//	KEYS[1]: 限流 key (rate:limit:ip:{ip})
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 每次请求消耗的令牌数
//
// 返回 1 允许通过，0 令牌不足。时间戳用毫秒精度减小计算误差。
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)

if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// ==================== IP 限流器 ====================

// localLimiterCacheSize 本地限流器缓存的 IP 条目上限
const localLimiterCacheSize = 8192

// IPRateLimiter IP 级别限流器。
// Redis 可用时走集中式令牌桶（多实例共享配额）；
// Redis 不可用或超时，退化为进程内 x/time/rate 限流而不是直接放行，
// 本地限流器按 IP 维度缓存在 LRU 里，冷 IP 自动淘汰。
type IPRateLimiter struct {
	mu          sync.RWMutex
	redisClient *redis.Client
	rps         float64
	burst       int
	local       *lru.Cache[string, *rate.Limiter]
}

// NewIPRateLimiter 创建限流器。rps 为每秒令牌数，burst 为桶容量。
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	local, _ := lru.New[string, *rate.Limiter](localLimiterCacheSize)
	return &IPRateLimiter{
		rps:   rps,
		burst: burst,
		local: local,
	}
}

// SetRedisClient 设置 Redis 客户端，延迟注入避免初始化顺序耦合。
func (r *IPRateLimiter) SetRedisClient(client *redis.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redisClient = client
}

// Allow 检查某个 IP 的本次请求是否放行。
func (r *IPRateLimiter) Allow(ctx context.Context, ip string) bool {
	r.mu.RLock()
	client := r.redisClient
	r.mu.RUnlock()

	if client == nil {
		return r.allowLocal(ip)
	}

	// Redis 操作加独立短超时，防止 Redis 响应慢拖死请求链路
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	key := rediskey.RateLimitIPKey(ip)
	result, err := client.Eval(redisCtx, luaTokenBucket, []string{key},
		time.Now().UnixMilli(), r.burst, r.rps, 1).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Redis 限流检查超时，退化为本地限流",
				logger.String("ip", ip), logger.ErrorField("error", err))
		} else {
			logger.Error(ctx, "Redis 限流检查失败，退化为本地限流",
				logger.String("ip", ip), logger.ErrorField("error", err))
		}
		return r.allowLocal(ip)
	}

	allowed, ok := result.(int64)
	if !ok {
		logger.Warn(ctx, "Redis 限流返回值类型错误，退化为本地限流",
			logger.String("ip", ip), logger.Any("result", result))
		return r.allowLocal(ip)
	}
	return allowed == 1
}

func (r *IPRateLimiter) allowLocal(ip string) bool {
	limiter, ok := r.local.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.rps), r.burst)
		// 并发首见同一 IP 时可能创建两个 limiter，多放行一两个请求无妨
		r.local.Add(ip, limiter)
	}
	return limiter.Allow()
}

// ==================== 限流中间件 ====================

// IPRateLimitMiddleware 基于令牌桶的 IP 级别限流中间件
func IPRateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(NewContextWithGin(c), ip) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    consts.CodeTooManyRequests,
				"message": consts.GetMessage(consts.CodeTooManyRequests),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
