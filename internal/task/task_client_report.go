package task

import (
	"context"
	"time"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"go.uber.org/zap"
)

// ClientReportTask 客户端巡检任务
// 定期统计过期与离线的客户端并写入日志
type ClientReportTask struct {
	app      *app.App
	interval time.Duration
}

// Name 返回任务名称
func (t *ClientReportTask) Name() string {
	return "ClientReport"
}

// LoopInterval 返回执行间隔
func (t *ClientReportTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 是否立即执行一次
func (t *ClientReportTask) IsStartupRun() bool {
	return false
}

// Run 执行巡检
// 只做报告，不修改任何客户端状态
func (t *ClientReportTask) Run(ctx context.Context) error {
	logger := t.app.Logger()

	stale, err := t.app.ClientService.StaleClients(ctx)
	if err != nil {
		return err
	}
	offline, err := t.app.ClientService.OfflineClients(ctx)
	if err != nil {
		return err
	}

	if len(stale) == 0 && len(offline) == 0 {
		logger.Info("task log",
			zap.String("task", t.Name()),
			zap.String("msg", "all clients current"))
		return nil
	}

	for _, c := range stale {
		logger.Warn("task log",
			zap.String("task", t.Name()),
			zap.String("msg", "client stale"),
			zap.Int64("clientId", c.ID),
			zap.String("client", c.Name),
			zap.String("status", c.Status))
	}
	for _, c := range offline {
		logger.Warn("task log",
			zap.String("task", t.Name()),
			zap.String("msg", "client offline"),
			zap.Int64("clientId", c.ID),
			zap.String("client", c.Name),
			zap.String("status", c.Status))
	}

	return nil
}

// NewClientReportTask 创建巡检任务
func NewClientReportTask(appContainer *app.App) (Task, error) {
	interval := appContainer.Config().GetReportInterval()
	if interval <= 0 {
		return nil, nil
	}
	return &ClientReportTask{app: appContainer, interval: interval}, nil
}

// init 自动注册巡检任务
func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewClientReportTask(appContainer)
	})
}
