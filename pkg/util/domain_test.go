package util

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestIsValidDomain(t *testing.T) {
	valid := []string{
		"ads.example.com",
		"example.com",
		"a-b.example.co",
		"xn--fiqs8s.cn",
		"tracker.some-site.io",
	}
	for _, d := range valid {
		assert.True(t, IsValidDomain(d), d)
	}

	invalid := []string{
		"",
		"a.b",              // 长度不足
		"com",              // 缺少标签
		"-bad.example.com", // 标签以连字符开头
		"bad-.example.com", // 标签以连字符结尾
		"example.c0m",      // TLD 含数字
		"exam ple.com",     // 空白
		"http://example.com",
		strings.Repeat("a", 64) + ".com", // 标签超长
		strings.Repeat("a.", 130) + "com",
	}
	for _, d := range invalid {
		assert.False(t, IsValidDomain(d), d)
	}
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeDomain("  EXAMPLE.COM  "))
	assert.Equal(t, "example.com", NormalizeDomain("example.com."))
	assert.Equal(t, "ads.example.com", NormalizeDomain("Ads.Example.Com"))
}

func TestNormalizeDomain_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// 规范化是幂等的
	properties.Property("normalize is idempotent", prop.ForAll(
		func(s string) bool {
			once := NormalizeDomain(s)
			return NormalizeDomain(once) == once
		},
		gen.AnyString(),
	))

	// 合法域名规范化后保持合法
	properties.Property("valid domains survive normalization", prop.ForAll(
		func(label string, tld string) bool {
			d := label + ".example." + tld
			if !IsValidDomain(d) {
				return true
			}
			return IsValidDomain(NormalizeDomain(strings.ToUpper(d) + "."))
		},
		gen.RegexMatch(`[a-z0-9]{1,10}`),
		gen.RegexMatch(`[a-z]{2,6}`),
	))

	properties.TestingRun(t)
}
