package domain

import "time"

// HistoryAction 定义域名变更操作类型
type HistoryAction string

const (
	HistoryActionAdded       HistoryAction = "added"
	HistoryActionRemoved     HistoryAction = "removed"
	HistoryActionActivated   HistoryAction = "activated"
	HistoryActionDeactivated HistoryAction = "deactivated"
)

// DomainHistory 域名变更历史领域模型
type DomainHistory struct {
	ID          int64
	DomainID    int64
	Domain      string
	Action      HistoryAction
	OldValue    map[string]any
	NewValue    map[string]any
	PerformedBy string
	PerformedAt time.Time
}
