package util

import (
	"crypto/rand"
	"encoding/base64"
	mrand "math/rand"
)

// GetRandomString 生成指定长度的随机字符串（非加密用途）
func GetRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, length)
	for i := range b {
		b[i] = charset[mrand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateAPIKey 生成 32 字节加密随机数的 URL 安全 base64 凭证
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
