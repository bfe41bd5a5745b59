package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldClientID 客户端 ID 字段
	FieldClientID = "clientId"

	// FieldClientName 客户端名称字段
	FieldClientName = "clientName"

	// FieldDomain 域名字段
	FieldDomain = "domain"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldActor 操作者字段
	FieldActor = "actor"

	// FieldSyncID 同步记录 ID 字段
	FieldSyncID = "syncId"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldCacheKey 缓存键字段
	FieldCacheKey = "cacheKey"
)
