// Package domain 定义领域模型和接口
package domain

import "time"

// DomainSource 定义域名来源类型
type DomainSource string

const (
	DomainSourceManual DomainSource = "manual"
	DomainSourceBulk   DomainSource = "bulk"
	DomainSourceImport DomainSource = "import"
)

// BlockedDomain 拦截域名领域模型
type BlockedDomain struct {
	ID        int64
	Domain    string
	IsActive  bool
	Source    DomainSource
	SourceRef string
	Notes     string
	AddedBy   string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// Snapshot 生成用于历史记录的字段快照
func (d *BlockedDomain) Snapshot() map[string]any {
	return map[string]any{
		"domain":    d.Domain,
		"is_active": d.IsActive,
		"source":    string(d.Source),
		"notes":     d.Notes,
	}
}
