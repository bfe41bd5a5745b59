package task

import (
	"sync"

	"github.com/br10net/blocklist-sync-service/internal/app"
)

// AppTaskFactory 任务工厂函数类型，接收 App Container 创建任务实例
// 返回 (nil, nil) 表示任务按配置禁用
type AppTaskFactory func(appContainer *app.App) (Task, error)

// 全局任务注册表
var (
	taskRegistry  []AppTaskFactory
	registryMutex sync.RWMutex
)

// RegisterWithApp 注册任务工厂函数
// 通常在各个任务文件的 init() 函数中调用
func RegisterWithApp(factory AppTaskFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	taskRegistry = append(taskRegistry, factory)
}

// GetFactories 获取所有已注册的任务工厂
func GetFactories() []AppTaskFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	// 返回副本，避免外部修改
	factories := make([]AppTaskFactory, len(taskRegistry))
	copy(factories, taskRegistry)
	return factories
}
