// Package config 定义scrapekit的进程级配置
// 配置既可通过Load从YAML文件读取(viper), 也可由调用方直接构造;
// 运行期调整通过Merge完成: 深拷贝合并产生新对象而非就地修改,
// 已捕获旧快照的在途请求保持各自已解析的视图。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/scrapekit/errs"
)

// Bool 构造*bool字面量, 便于填写三态开关字段
func Bool(v bool) *bool {
	return &v
}

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// ProfileDefault 普通HTTP请求的限速配置档
	ProfileDefault = "default"
	// ProfileBrowser 浏览器请求的限速配置档
	ProfileBrowser = "browser"
)

// Limit 限速配置: 同一(interval, concurrency)元组共享一个调度队列
type Limit struct {
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
	Enable      *bool         `mapstructure:"enable"` // 针对主机名配置: false时跳过该条目
}

// Enabled 条目是否生效(未显式设置视为生效)
func (l Limit) Enabled() bool {
	return l.Enable == nil || *l.Enable
}

// Proxy 代理配置
// Enable与Use为三态开关: 未设置的delta字段在Merge时不覆盖已有取值。
type Proxy struct {
	Enable    *bool    `mapstructure:"enable"`
	Use       *bool    `mapstructure:"use"` // 对所有请求启用
	Host      string   `mapstructure:"host"`
	Port      int      `mapstructure:"port"`
	Hostnames []string `mapstructure:"hostnames"` // 允许走代理的主机名清单
}

// Enabled 代理是否启用(未显式设置视为关闭)
func (p Proxy) Enabled() bool {
	return p.Enable != nil && *p.Enable
}

// UseAll 是否对所有请求走代理(未显式设置视为关闭)
func (p Proxy) UseAll() bool {
	return p.Use != nil && *p.Use
}

// Address 代理地址(host:port), 未配置主机时返回空串
func (p Proxy) Address() string {
	if p.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Config scrapekit配置
type Config struct {
	// ThrowErrors 错误上抛而非记录日志后降级; LogErrors 失败时记录日志
	// 两者均为三态开关, Merge时未设置的delta字段不覆盖。
	ThrowErrors *bool `mapstructure:"throw_errors"`
	LogErrors   *bool `mapstructure:"log_errors"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	UserAgent        string `mapstructure:"user_agent"`
	BrowserUserAgent string `mapstructure:"browser_user_agent"`
	APIUserAgent     string `mapstructure:"api_user_agent"`

	// Limits 键为配置档名("default"/"browser")或主机名
	Limits map[string]Limit `mapstructure:"limits"`

	Proxy Proxy `mapstructure:"proxy"`

	Headers        map[string]string `mapstructure:"headers"`
	DefaultHeaders map[string]string `mapstructure:"default_headers"` // 覆盖内置默认头部
	Cookies        map[string]string `mapstructure:"cookies"`

	FollowRedirects *bool `mapstructure:"follow_redirects"`
	MaxRedirects    int   `mapstructure:"max_redirects"`

	// ClientRetirement 浏览器句柄复用达到该次数后退役
	ClientRetirement int `mapstructure:"client_retirement"`
}

// ErrorPolicy 当前配置对应的错误处理策略
// 未显式设置时: 不上抛, 记录日志。
func (c *Config) ErrorPolicy() errs.Policy {
	return errs.Policy{
		Throw: c.ThrowErrors != nil && *c.ThrowErrors,
		Log:   c.LogErrors == nil || *c.LogErrors,
	}
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		ThrowErrors:      Bool(false),
		LogErrors:        Bool(true),
		RequestTimeout:   30 * time.Second,
		UserAgent:        DefaultUserAgent,
		BrowserUserAgent: DefaultUserAgent,
		Limits: map[string]Limit{
			ProfileDefault: {Interval: time.Second, Concurrency: 4},
			ProfileBrowser: {Interval: 2 * time.Second, Concurrency: 2},
		},
		MaxRedirects:     10,
		ClientRetirement: 20,
	}
}

// Merge 将delta深合并到c之上, 返回全新对象, c保持不变
// 合并规则: delta中的零值字段不覆盖; map按键逐项覆盖。
func (c *Config) Merge(delta *Config) *Config {
	merged := c.Clone()
	if delta == nil {
		return merged
	}

	if delta.ThrowErrors != nil {
		v := *delta.ThrowErrors
		merged.ThrowErrors = &v
	}
	if delta.LogErrors != nil {
		v := *delta.LogErrors
		merged.LogErrors = &v
	}
	if delta.RequestTimeout > 0 {
		merged.RequestTimeout = delta.RequestTimeout
	}
	if delta.UserAgent != "" {
		merged.UserAgent = delta.UserAgent
	}
	if delta.BrowserUserAgent != "" {
		merged.BrowserUserAgent = delta.BrowserUserAgent
	}
	if delta.APIUserAgent != "" {
		merged.APIUserAgent = delta.APIUserAgent
	}
	for key, limit := range delta.Limits {
		merged.Limits[key] = limit
	}
	// 代理字段逐项合并: 只设置Use或Hostnames的delta同样生效
	if delta.Proxy.Enable != nil {
		v := *delta.Proxy.Enable
		merged.Proxy.Enable = &v
	}
	if delta.Proxy.Use != nil {
		v := *delta.Proxy.Use
		merged.Proxy.Use = &v
	}
	if delta.Proxy.Host != "" {
		merged.Proxy.Host = delta.Proxy.Host
		merged.Proxy.Port = delta.Proxy.Port
	}
	if len(delta.Proxy.Hostnames) > 0 {
		merged.Proxy.Hostnames = append(merged.Proxy.Hostnames, delta.Proxy.Hostnames...)
	}
	for key, value := range delta.Headers {
		merged.Headers[key] = value
	}
	for key, value := range delta.DefaultHeaders {
		merged.DefaultHeaders[key] = value
	}
	for key, value := range delta.Cookies {
		merged.Cookies[key] = value
	}
	if delta.FollowRedirects != nil {
		v := *delta.FollowRedirects
		merged.FollowRedirects = &v
	}
	if delta.MaxRedirects > 0 {
		merged.MaxRedirects = delta.MaxRedirects
	}
	if delta.ClientRetirement > 0 {
		merged.ClientRetirement = delta.ClientRetirement
	}
	return merged
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	cp := *c
	cp.Limits = make(map[string]Limit, len(c.Limits))
	for k, v := range c.Limits {
		cp.Limits[k] = v
	}
	cp.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		cp.Headers[k] = v
	}
	cp.DefaultHeaders = make(map[string]string, len(c.DefaultHeaders))
	for k, v := range c.DefaultHeaders {
		cp.DefaultHeaders[k] = v
	}
	cp.Cookies = make(map[string]string, len(c.Cookies))
	for k, v := range c.Cookies {
		cp.Cookies[k] = v
	}
	if c.ThrowErrors != nil {
		v := *c.ThrowErrors
		cp.ThrowErrors = &v
	}
	if c.LogErrors != nil {
		v := *c.LogErrors
		cp.LogErrors = &v
	}
	if c.FollowRedirects != nil {
		v := *c.FollowRedirects
		cp.FollowRedirects = &v
	}
	if c.Proxy.Enable != nil {
		v := *c.Proxy.Enable
		cp.Proxy.Enable = &v
	}
	if c.Proxy.Use != nil {
		v := *c.Proxy.Use
		cp.Proxy.Use = &v
	}
	cp.Proxy.Hostnames = append([]string(nil), c.Proxy.Hostnames...)
	return &cp
}

// Load 从配置文件加载配置
// configPath为空时搜索默认位置(./configs、当前目录、~/.scrapekit)。
// 配置文件不存在时返回默认配置。
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".scrapekit"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return Default().Merge(&loaded), nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_errors", true)
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("max_redirects", 10)
	v.SetDefault("client_retirement", 20)
	v.SetDefault("limits.default.interval", "1s")
	v.SetDefault("limits.default.concurrency", 4)
	v.SetDefault("limits.browser.interval", "2s")
	v.SetDefault("limits.browser.concurrency", 2)
}
