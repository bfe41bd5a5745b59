// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/br10net/blocklist-sync-service/internal/cache"
	"github.com/br10net/blocklist-sync-service/internal/dao"
	"github.com/br10net/blocklist-sync-service/internal/service"
	"github.com/br10net/blocklist-sync-service/pkg/util"
	"github.com/br10net/blocklist-sync-service/pkg/workerpool"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File      string                `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig          `yaml:"server"`
	Log       LogConfig             `yaml:"log"`
	Database  dao.Database          `yaml:"database"`
	Redis     cache.Config          `yaml:"redis"`
	RateLimit cache.RateLimitConfig `yaml:"rate-limit"`
	App       AppSettings           `yaml:"app"`
	Push      PushConfig            `yaml:"push"`
	Monitor   MonitorConfig         `yaml:"monitor"`
	Security  SecurityConfig        `yaml:"security"`
	Tracer    TracerConfig          `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址
	PrivateHttpListen string `yaml:"private-http-listen" default:":9001"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// AuthTokenKey 管理端 Token 签名密钥
	AuthTokenKey string `yaml:"auth-token-key" default:"blocklist-sync-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
	// AdminUser 管理员用户名
	AdminUser string `yaml:"admin-user" default:"admin"`
	// AdminPassword 管理员密码，留空时禁用管理端 Token 签发
	AdminPassword string `yaml:"admin-password"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"20"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// IsReturnSussess 是否返回成功信息
	IsReturnSussess bool `yaml:"is-return-sussess" default:"false"`
	// BulkAddMaxDomains 单次批量提交的域名上限
	BulkAddMaxDomains int `yaml:"bulk-add-max-domains" default:"10000"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"20"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"200"`
}

// PushConfig 下发推送配置
type PushConfig struct {
	// Timeout 单个客户端推送请求超时，支持格式：30s、1m
	Timeout string `yaml:"timeout" default:"30s"`
	// HealthTimeout 健康探测超时
	HealthTimeout string `yaml:"health-timeout" default:"10s"`
	// MaxWorkers 并发推送协程数量
	MaxWorkers int `yaml:"max-workers" default:"10"`
	// AutoPushEnabled 是否开启定时自动推送
	AutoPushEnabled bool `yaml:"auto-push-enabled" default:"false"`
	// AutoPushInterval 自动推送间隔
	AutoPushInterval string `yaml:"auto-push-interval" default:"1h"`
}

// MonitorConfig 客户端监控配置
type MonitorConfig struct {
	// StaleAfter 距离上次同步超过该时长视为过期
	StaleAfter string `yaml:"stale-after" default:"24h"`
	// OfflineAfter 距离上次心跳超过该时长视为离线
	OfflineAfter string `yaml:"offline-after" default:"10m"`
	// RecentSyncs 统计接口展示的最近同步数量
	RecentSyncs int `yaml:"recent-syncs" default:"10"`
	// ReportInterval 后台巡检报告间隔
	ReportInterval string `yaml:"report-interval" default:"5m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Push: service.PushServiceConfig{
			Timeout:       c.Push.Timeout,
			HealthTimeout: c.Push.HealthTimeout,
			MaxWorkers:    c.Push.MaxWorkers,
		},
		Monitor: service.MonitorServiceConfig{
			StaleAfter:   c.Monitor.StaleAfter,
			OfflineAfter: c.Monitor.OfflineAfter,
			RecentSyncs:  c.Monitor.RecentSyncs,
		},
	}
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil {
		return expiry
	}
	return 7 * 24 * time.Hour // 理论上不会走到这里，因为有默认值
}

// GetAutoPushInterval 获取自动推送间隔
func (c *AppConfig) GetAutoPushInterval() time.Duration {
	if d, err := util.ParseDuration(c.Push.AutoPushInterval); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

// GetReportInterval 获取巡检报告间隔
func (c *AppConfig) GetReportInterval() time.Duration {
	if d, err := util.ParseDuration(c.Monitor.ReportInterval); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}
