package model

import "github.com/br10net/blocklist-sync-service/pkg/timex"

const TableNameSyncHistory = "sync_history"

// SyncHistory mapped from table <sync_history>
type SyncHistory struct {
	ID              int64       `gorm:"column:id;primaryKey" json:"id" form:"id"`
	ClientID        int64       `gorm:"column:client_id;not null;index:idx_sync_client_id" json:"clientId" form:"clientId"`
	Status          string      `gorm:"column:status;default:pending;index:idx_sync_status" json:"status" form:"status"`
	DomainsSent     int64       `gorm:"column:domains_sent;default:0" json:"domainsSent" form:"domainsSent"`
	DomainsApplied  int64       `gorm:"column:domains_applied;default:0" json:"domainsApplied" form:"domainsApplied"`
	Message         string      `gorm:"column:message" json:"message" form:"message"`
	ErrorDetails    string      `gorm:"column:error_details;type:text" json:"errorDetails" form:"errorDetails"`
	DurationSeconds float64     `gorm:"column:duration_seconds;default:0" json:"durationSeconds" form:"durationSeconds"`
	StartedAt       timex.Time  `gorm:"column:started_at;type:datetime;default:NULL;autoCreateTime:false;index:idx_started_at" json:"startedAt" form:"startedAt"`
	CompletedAt     *timex.Time `gorm:"column:completed_at;type:datetime;default:NULL" json:"completedAt" form:"completedAt"`
}

// TableName SyncHistory's table name
func (*SyncHistory) TableName() string {
	return TableNameSyncHistory
}
