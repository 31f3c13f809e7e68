package repository

// ==================== Redis Lua 脚本 ====================
//
// 缓存维护的统一原则：只有 Key 存在时才增量更新，Key 不存在时不操作，
// 由读路径负责全量加载。避免 Key 过期后增量写入造成的不完整缓存。

// luaIncrIfExists 当日通知计数自增。
// Key 不存在时什么都不做（返回 -1），下次读取会从台账全量重算并带上本次。
// KEYS[1]: 计数 key
// ARGV[1]: 过期秒数
const luaIncrIfExists = `
if redis.call('EXISTS', KEYS[1]) == 1 then
    local v = redis.call('INCR', KEYS[1])
    redis.call('EXPIRE', KEYS[1], ARGV[1])
    return v
end
return -1
`

// luaSetIdentityIfAbsent 身份映射写缓存。
// 映射是 append-only 的，只在 Key 不存在时写入，存在时保持原值。
// KEYS[1]: 身份 key
// ARGV[1]: canonical id
// ARGV[2]: 过期秒数
const luaSetIdentityIfAbsent = `
if redis.call('EXISTS', KEYS[1]) == 0 then
    redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
    return 1
end
return 0
`
