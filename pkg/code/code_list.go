package code

// 成功码
var (
	Success       = NewSuss(0, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(1, lang{en: "Create Success", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(2, lang{en: "Update Success", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(3, lang{en: "Delete Success", zh_cn: "删除成功"})
)

// 通用错误码 1xxxx
var (
	ErrorInvalidParams   = NewError(10001, "INVALID_PARAMS", lang{en: "Invalid Params", zh_cn: "入参错误"})
	ErrorServerInternal  = NewError(10002, "INTERNAL_ERROR", lang{en: "Server Internal Error", zh_cn: "服务内部错误"})
	ErrorNotFoundAPI     = NewError(10003, "NOT_FOUND", lang{en: "API Not Found", zh_cn: "接口不存在"})
	ErrorTooManyRequests = NewError(10004, "TOO_MANY_REQUESTS", lang{en: "Too Many Requests", zh_cn: "请求过多"})
	ErrorDBQuery         = NewError(10005, "INTERNAL_ERROR", lang{en: "Database Query Error", zh_cn: "数据库查询错误"})
)

// 认证错误码 2xxxx
var (
	ErrorNotAPIKey         = NewError(20001, "UNAUTHORIZED", lang{en: "API Key Required", zh_cn: "缺少 API Key"})
	ErrorInvalidAPIKey     = NewError(20002, "UNAUTHORIZED", lang{en: "Invalid API Key", zh_cn: "无效的 API Key"})
	ErrorClientDisabled    = NewError(20003, "FORBIDDEN", lang{en: "Client Is Disabled", zh_cn: "客户端已停用"})
	ErrorNotAdminToken     = NewError(20011, "UNAUTHORIZED", lang{en: "Admin Token Required", zh_cn: "缺少管理员 Token"})
	ErrorInvalidAdminToken = NewError(20012, "UNAUTHORIZED", lang{en: "Invalid Admin Token", zh_cn: "无效的管理员 Token"})
	ErrorUserAuthFail      = NewError(20013, "UNAUTHORIZED", lang{en: "Invalid Username Or Password", zh_cn: "用户名或密码错误"})
)

// 业务错误码 3xxxx
var (
	ErrorDomainNotFound = NewError(30001, "NOT_FOUND", lang{en: "Domain Not Found", zh_cn: "域名不存在"})
	ErrorDomainExist    = NewError(30002, "ALREADY_EXISTS", lang{en: "Domain Already Exists", zh_cn: "域名已存在"})
	ErrorDomainInvalid  = NewError(30003, "VALIDATION_ERROR", lang{en: "Invalid Domain Name", zh_cn: "域名格式无效"})

	ErrorClientNotFound  = NewError(30101, "NOT_FOUND", lang{en: "Client Not Found", zh_cn: "客户端不存在"})
	ErrorClientNameExist = NewError(30102, "ALREADY_EXISTS", lang{en: "Client Name Already Exists", zh_cn: "客户端名称已存在"})

	ErrorSyncNotFound      = NewError(30201, "NOT_FOUND", lang{en: "Sync Record Not Found", zh_cn: "同步记录不存在"})
	ErrorSyncOwnership     = NewError(30202, "FORBIDDEN", lang{en: "Sync Record Belongs To Another Client", zh_cn: "同步记录属于其他客户端"})
	ErrorSyncFinalized     = NewError(30203, "CONFLICT", lang{en: "Sync Record Already Finalized", zh_cn: "同步记录已终结"})
	ErrorSyncStatusInvalid = NewError(30204, "INVALID_PARAMS", lang{en: "Invalid Sync Status", zh_cn: "无效的同步状态"})

	ErrorPushNoEndpoint = NewError(30301, "INVALID_PARAMS", lang{en: "Client Has No Push Endpoint", zh_cn: "客户端未配置推送地址"})
)
