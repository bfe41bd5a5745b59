package cache

import (
	"strconv"
	"time"
)

// 缓存键命名空间
const (
	// KeyActiveDomains 活跃域名列表
	KeyActiveDomains = "domains:active_list"
	// KeyGeneralStats 全局统计
	KeyGeneralStats = "stats:general"
	// PrefixDomains 域名相关键前缀
	PrefixDomains = "domains:"
	// PrefixStats 统计相关键前缀
	PrefixStats = "stats:"
	// PrefixClientStatus 客户端状态键前缀
	PrefixClientStatus = "client:status:"
	// PrefixRateLimit 限流计数键前缀
	PrefixRateLimit = "ratelimit:"
)

// 缓存 TTL
const (
	// TTLActiveDomains 活跃域名列表缓存时长
	TTLActiveDomains = 300 * time.Second
	// TTLGeneralStats 统计缓存时长
	TTLGeneralStats = 60 * time.Second
	// TTLClientStatus 客户端状态缓存时长
	TTLClientStatus = 120 * time.Second
)

// ClientStatusKey 客户端状态缓存键
func ClientStatusKey(clientID int64) string {
	return PrefixClientStatus + strconv.FormatInt(clientID, 10)
}

// RateLimitKey 限流计数键
func RateLimitKey(identifier string) string {
	return PrefixRateLimit + identifier
}
