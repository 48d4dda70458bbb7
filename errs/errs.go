// Package errs 定义scrapekit的错误分类与传播策略
//
// 字段级提取失败(坏数字、坏日期、坏JSON)永远不报错, 直接退化为nil;
// 只有用法错误(缺少必填参数、非法输入类型)和传输层失败参与可配置的
// 抛出/记录策略。
package errs

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Kind 错误类别
type Kind string

const (
	// KindInvalidContext 初始化器或未绑定查询收到无法解析的输入
	KindInvalidContext Kind = "INVALID_CONTEXT"
	// KindNoDateFormat 日期提取未提供必需的时间布局
	KindNoDateFormat Kind = "NO_DATE_FORMAT"
	// KindHTTPNotOK 非2xx响应
	KindHTTPNotOK Kind = "HTTP_NOT_OK"
	// KindParse DOM构建协作方报出的解析级错误
	KindParse Kind = "PARSE"
	// KindTransport 传输层或浏览器导航失败
	KindTransport Kind = "TRANSPORT"
)

// Error 带类别标签的错误, 附加诊断字段供调用方检查
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Fields map[string]any // 诊断数据(如HTTP状态码、响应头)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定类别的错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建指定类别的格式化错误
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并打上类别标签
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithField 附加一个诊断字段
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// KindOf 返回错误的类别, 非本包错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Policy 全局错误传播策略
// Throw为true时错误上抛给调用方; 否则按Log决定是否记录日志,
// 并返回nil让调用方以空值哨兵继续执行。
type Policy struct {
	Throw bool
	Log   bool
}

// Handle 按策略处理错误
func (p Policy) Handle(err error) error {
	if err == nil {
		return nil
	}
	if p.Throw {
		return err
	}
	if p.Log {
		log.Error().Err(err).Str("kind", string(KindOf(err))).Msg("查询错误已按策略降级")
	}
	return nil
}
