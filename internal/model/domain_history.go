package model

import "github.com/br10net/blocklist-sync-service/pkg/timex"

const TableNameDomainHistory = "domain_history"

// DomainHistory mapped from table <domain_history>
type DomainHistory struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	DomainID    int64      `gorm:"column:domain_id;not null;index:idx_domain_id" json:"domainId" form:"domainId"`
	Domain      string     `gorm:"column:domain;not null;index:idx_history_domain" json:"domain" form:"domain"`
	Action      string     `gorm:"column:action;not null" json:"action" form:"action"`
	OldValue    string     `gorm:"column:old_value;type:text" json:"oldValue" form:"oldValue"`
	NewValue    string     `gorm:"column:new_value;type:text" json:"newValue" form:"newValue"`
	PerformedBy string     `gorm:"column:performed_by" json:"performedBy" form:"performedBy"`
	PerformedAt timex.Time `gorm:"column:performed_at;type:datetime;default:NULL;autoCreateTime:false;index:idx_performed_at" json:"performedAt" form:"performedAt"`
}

// TableName DomainHistory's table name
func (*DomainHistory) TableName() string {
	return TableNameDomainHistory
}
