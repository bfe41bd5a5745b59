package app

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 所有错误消息拼接为一个字符串
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ", ")
}

// MapsToString 按字段聚合错误消息
func (v ValidErrors) MapsToString() map[string]string {
	m := map[string]string{}
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid 绑定请求参数并执行校验
// 校验错误消息使用请求语言的翻译器本地化
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors

	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: err.Error(),
		})
		return false, errs
	}

	trans, _ := c.Get("trans")
	if translator, ok := trans.(ut.Translator); ok {
		for key, value := range verrs.Translate(translator) {
			errs = append(errs, &ValidError{
				Key:     key,
				Message: value,
			})
		}
	} else {
		for _, fe := range verrs {
			errs = append(errs, &ValidError{
				Key:     fe.Field(),
				Message: fe.Error(),
			})
		}
	}

	return false, errs
}
