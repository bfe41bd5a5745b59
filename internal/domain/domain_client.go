package domain

import "time"

// ClientStatus 定义客户端状态
type ClientStatus string

const (
	ClientStatusOffline ClientStatus = "offline"
	ClientStatusOnline  ClientStatus = "online"
	ClientStatusSyncing ClientStatus = "syncing"
	ClientStatusError   ClientStatus = "error"
)

// DNSClient DNS 解析端领域模型
type DNSClient struct {
	ID            int64
	Name          string
	APIKey        string
	IPAddress     string
	Description   string
	Status        ClientStatus
	IsActive      bool
	DomainsCount  int64
	LastSync      *time.Time
	LastHeartbeat *time.Time
	Metadata      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// metaString 读取 metadata 中的字符串值
func (c *DNSClient) metaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// PushEndpoint 获取推送地址
func (c *DNSClient) PushEndpoint() string {
	return c.metaString("push_endpoint")
}

// PushSecret 获取推送密钥，未配置时回退到 API Key
func (c *DNSClient) PushSecret() string {
	if s := c.metaString("push_secret"); s != "" {
		return s
	}
	return c.APIKey
}

// HealthEndpoint 获取健康检查地址
func (c *DNSClient) HealthEndpoint() string {
	return c.metaString("health_endpoint")
}

// IsStale 判断客户端是否长时间未同步
func (c *DNSClient) IsStale(threshold time.Duration, now time.Time) bool {
	if c.LastSync == nil {
		return true
	}
	return now.Sub(*c.LastSync) > threshold
}

// IsSilent 判断客户端是否长时间无心跳
func (c *DNSClient) IsSilent(threshold time.Duration, now time.Time) bool {
	if c.LastHeartbeat == nil {
		return true
	}
	return now.Sub(*c.LastHeartbeat) > threshold
}
