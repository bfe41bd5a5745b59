package task

import (
	"context"
	"time"

	"github.com/br10net/blocklist-sync-service/internal/app"
	"go.uber.org/zap"
)

// AutoPushTask 定时全量推送任务
// 按配置间隔向全部启用客户端推送当前启用域名
type AutoPushTask struct {
	app      *app.App
	interval time.Duration
}

// Name 返回任务名称
func (t *AutoPushTask) Name() string {
	return "AutoPush"
}

// LoopInterval 返回执行间隔
func (t *AutoPushTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 是否立即执行一次
func (t *AutoPushTask) IsStartupRun() bool {
	return false
}

// Run 执行全量推送
func (t *AutoPushTask) Run(ctx context.Context) error {
	result, err := t.app.SyncService.PushToAll(ctx)
	if err != nil {
		return err
	}

	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))

	return nil
}

// NewAutoPushTask 创建自动推送任务
// 配置未开启时返回 (nil, nil)
func NewAutoPushTask(appContainer *app.App) (Task, error) {
	cfg := appContainer.Config()
	if !cfg.Push.AutoPushEnabled {
		return nil, nil
	}
	return &AutoPushTask{app: appContainer, interval: cfg.GetAutoPushInterval()}, nil
}

// init 自动注册自动推送任务
func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewAutoPushTask(appContainer)
	})
}
