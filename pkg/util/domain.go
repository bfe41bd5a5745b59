package util

import (
	"regexp"
	"strings"
)

const (
	// DomainMinLength 域名最小长度
	DomainMinLength = 4
	// DomainMaxLength 域名最大长度
	DomainMaxLength = 255
)

// 域名格式：一个或多个标签加字母 TLD，标签不以连字符开头或结尾
var domainPattern = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9\-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// NormalizeDomain 规范化域名：去空白、转小写、去末尾点号
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(strings.ToLower(domain))
	return strings.TrimSuffix(d, ".")
}

// IsValidDomain 验证域名格式是否正确
// 先 NormalizeDomain 再校验
func IsValidDomain(domain string) bool {
	if len(domain) < DomainMinLength || len(domain) > DomainMaxLength {
		return false
	}
	return domainPattern.MatchString(domain)
}
