// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// IDRequest 通用 ID 请求
type IDRequest struct {
	ID int64 `json:"id" form:"id" binding:"required" example:"1"`
}

// AuthTokenRequest 管理端 Token 签发请求
type AuthTokenRequest struct {
	Username string `json:"username" form:"username" binding:"required" example:"admin"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthTokenDTO 管理端 Token 签发结果
type AuthTokenDTO struct {
	Token string `json:"token"` // JWT Token
}
