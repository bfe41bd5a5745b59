package domain

import "time"

// SyncStatus 定义同步状态
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
	SyncStatusPartial SyncStatus = "partial"
)

// IsFinal 判断是否为终态
func (s SyncStatus) IsFinal() bool {
	return s == SyncStatusSuccess || s == SyncStatusFailed || s == SyncStatusPartial
}

// IsValid 判断是否为合法状态值
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSuccess, SyncStatusFailed, SyncStatusPartial:
		return true
	}
	return false
}

// SyncHistory 同步记录领域模型
type SyncHistory struct {
	ID              int64
	ClientID        int64
	Status          SyncStatus
	DomainsSent     int64
	DomainsApplied  int64
	Message         string
	ErrorDetails    string
	DurationSeconds float64
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// CanTransitionTo 判断状态迁移是否允许，终态不可回退
func (s *SyncHistory) CanTransitionTo(next SyncStatus) bool {
	if s.Status.IsFinal() {
		return false
	}
	return next.IsFinal()
}
