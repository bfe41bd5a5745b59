// Package validator 提供 gin binding 的自定义验证器
package validator

import (
	"reflect"
	"sync"

	"github.com/br10net/blocklist-sync-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	val "github.com/go-playground/validator/v10"
)

// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	validate *val.Validate
}

// NewCustomValidator 创建验证器实例
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

var _ binding.StructValidator = (*CustomValidator)(nil)

// ValidateStruct 校验结构体
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyInit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		count := value.Len()
		for i := 0; i < count; i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// Engine 返回底层 validator 实例
func (v *CustomValidator) Engine() interface{} {
	v.lazyInit()
	return v.validate
}

func (v *CustomValidator) lazyInit() {
	v.once.Do(func() {
		v.validate = val.New()
		v.validate.SetTagName("binding")
	})
}

// RegisterCustom 注册自定义校验规则
// domainname: 可封锁域名格式
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*val.Validate)
	if !ok {
		return
	}

	_ = validate.RegisterValidation("domainname", func(fl val.FieldLevel) bool {
		return util.IsValidDomain(util.NormalizeDomain(fl.Field().String()))
	})
}
