package code

import (
	"fmt"
	"net/http"
)

// Code 统一响应码
// 携带数字码、机器可读 flag、多语言消息以及可选的 data/details
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 机器可读标识，如 UNAUTHORIZED / NOT_FOUND
	flag string
	// 多语言消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError 注册一个错误码，重复注册会 panic
func NewError(code int, flag string, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()

	return &Code{code: code, status: false, flag: flag, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss 注册一个成功码，重复注册会 panic
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()

	return &Code{code: code, status: true, flag: "OK", Lang: l}
}

// Clone 创建一个新的 Code 副本
// WithData / WithDetails 会修改接收者，跨请求共享时先 Clone
func (e *Code) Clone() *Code {
	return &Code{
		code:   e.code,
		status: e.status,
		flag:   e.flag,
		Lang:   e.Lang,
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Flag() string {
	return e.flag
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// copy 保留已设置的可选字段的完整副本
func (e *Code) copy() *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.details = e.details
	c.haveDetails = e.haveDetails
	return c
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.copy()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.copy()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// StatusCode HTTP 状态码，响应语义由 body 中的 code/flag 表达
func (e *Code) StatusCode() int {
	return http.StatusOK
}
