package model

import "github.com/br10net/blocklist-sync-service/pkg/timex"

const TableNameDNSClient = "dns_client"

// DNSClient mapped from table <dns_client>
type DNSClient struct {
	ID            int64       `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Name          string      `gorm:"column:name;not null;uniqueIndex:idx_client_name" json:"name" form:"name"`
	APIKey        string      `gorm:"column:api_key;not null;uniqueIndex:idx_api_key" json:"apiKey" form:"apiKey"`
	IPAddress     string      `gorm:"column:ip_address" json:"ipAddress" form:"ipAddress"`
	Description   string      `gorm:"column:description" json:"description" form:"description"`
	Status        string      `gorm:"column:status;default:offline;index:idx_status" json:"status" form:"status"`
	IsActive      bool        `gorm:"column:is_active;default:true" json:"isActive" form:"isActive"`
	DomainsCount  int64       `gorm:"column:domains_count;default:0" json:"domainsCount" form:"domainsCount"`
	LastSync      *timex.Time `gorm:"column:last_sync;type:datetime;default:NULL" json:"lastSync" form:"lastSync"`
	LastHeartbeat *timex.Time `gorm:"column:last_heartbeat;type:datetime;default:NULL" json:"lastHeartbeat" form:"lastHeartbeat"`
	Metadata      string      `gorm:"column:metadata;type:text" json:"metadata" form:"metadata"`
	CreatedAt     timex.Time  `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt     timex.Time  `gorm:"column:updated_at;type:datetime;default:NULL;autoCreateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName DNSClient's table name
func (*DNSClient) TableName() string {
	return TableNameDNSClient
}
