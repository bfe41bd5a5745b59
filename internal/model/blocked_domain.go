package model

import "github.com/br10net/blocklist-sync-service/pkg/timex"

const TableNameBlockedDomain = "blocked_domain"

// BlockedDomain mapped from table <blocked_domain>
type BlockedDomain struct {
	ID        int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Domain    string     `gorm:"column:domain;not null;uniqueIndex:idx_domain" json:"domain" form:"domain"`
	IsActive  bool       `gorm:"column:is_active;default:true;index:idx_is_active" json:"isActive" form:"isActive"`
	Source    string     `gorm:"column:source;default:manual" json:"source" form:"source"`
	SourceRef string     `gorm:"column:source_ref" json:"sourceRef" form:"sourceRef"`
	Notes     string     `gorm:"column:notes" json:"notes" form:"notes"`
	AddedBy   string     `gorm:"column:added_by" json:"addedBy" form:"addedBy"`
	AddedAt   timex.Time `gorm:"column:added_at;type:datetime;default:NULL;autoCreateTime:false" json:"addedAt" form:"addedAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoCreateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName BlockedDomain's table name
func (*BlockedDomain) TableName() string {
	return TableNameBlockedDomain
}
