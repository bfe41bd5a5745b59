package task

import (
	"github.com/br10net/blocklist-sync-service/internal/app"
	"github.com/br10net/blocklist-sync-service/pkg/safe_close"
	"go.uber.org/zap"
)

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	app       *app.App
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(appContainer *app.App, logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		app:       appContainer,
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
	}
}

// RegisterTasks 实例化所有已注册的任务
// 工厂返回 (nil, nil) 的任务视为按配置禁用
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
