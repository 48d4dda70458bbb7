package fetch

import (
	"time"

	"github.com/go-rod/rod"
)

// RequestOptions 单次请求的调用点选项, 覆盖配置快照中的同名项
type RequestOptions struct {
	// Headers 请求头, 与内置默认及配置合并后生效
	Headers map[string]string
	// Cookies 以name=value拼接进cookie头
	Cookies map[string]string
	// UserAgent 覆盖user-agent头
	UserAgent string
	// API 标记API请求, 使用api_user_agent
	API bool

	// Timeout 覆盖请求超时
	Timeout time.Duration
	// Interval / Concurrency 显式限速参数, 优先于主机名和配置档
	Interval    time.Duration
	Concurrency int
	// Limiter 限速配置档名, 默认"default", 浏览器请求默认"browser"
	Limiter string

	// Proxy 三态代理开关: nil=按配置决定, true/false=强制
	Proxy *bool

	// FollowRedirects / MaxRedirects 重定向策略覆盖
	FollowRedirects *bool
	MaxRedirects    int

	// NoExtract 跳过HTML响应的查询上下文装配
	NoExtract bool

	// Reuse false时绕过池, 启动一次性浏览器, 用完即关
	Reuse *bool
	// Scope 浏览器池作用域, 参与句柄键计算
	Scope string
	// Browser 浏览器启动与页面参数
	Browser BrowserOptions
	// Control 页面加载完成后执行的控制回调, 返回值写入响应信封
	Control func(page *rod.Page) (any, error)
}

// BrowserOptions 浏览器启动与页面配置, 参与池句柄键计算
type BrowserOptions struct {
	// Headless 默认true
	Headless *bool `json:"headless,omitempty"`
	// UserAgent 页面级UA覆盖
	UserAgent string `json:"user_agent,omitempty"`
	// Flags 额外的launcher开关
	Flags map[string]string `json:"flags,omitempty"`
	// PageTimeout 页面操作超时
	PageTimeout time.Duration `json:"page_timeout,omitempty"`
}

func (o BrowserOptions) headless() bool {
	if o.Headless == nil {
		return true
	}
	return *o.Headless
}
