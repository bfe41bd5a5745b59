// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Push    PushServiceConfig    // Push related config // 推送相关配置
	Monitor MonitorServiceConfig // Monitoring related config // 监控相关配置
}

// PushServiceConfig push service configuration
// PushServiceConfig 推送服务配置
type PushServiceConfig struct {
	Timeout       string // Push request timeout (e.g., 30s, 1m) // 推送请求超时时间
	HealthTimeout string // Health probe timeout (e.g., 10s) // 健康检查超时时间
	MaxWorkers    int    // Fan-out worker count // 并发推送协程数量
}

// MonitorServiceConfig monitoring configuration
// MonitorServiceConfig 监控配置
type MonitorServiceConfig struct {
	StaleAfter   string // Last sync age before a client counts as stale (e.g., 24h) // 超过该时长未同步视为过期
	OfflineAfter string // Heartbeat age before a client counts as offline (e.g., 10m) // 超过该时长无心跳视为离线
	RecentSyncs  int    // Recent sync records shown in stats // 统计中展示的最近同步数量
}
