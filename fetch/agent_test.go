package fetch

import (
	"testing"

	"github.com/RecoveryAshes/scrapekit/config"
)

func boolPtr(v bool) *bool { return &v }

func TestUseProxy(t *testing.T) {
	base := func() *config.Config {
		cfg := config.Default()
		cfg.Proxy = config.Proxy{
			Enable:    config.Bool(true),
			Host:      "127.0.0.1",
			Port:      7890,
			Hostnames: []string{"geo.example.com"},
		}
		return cfg
	}

	tests := []struct {
		name string
		mod  func(*config.Config)
		opts RequestOptions
		url  string
		want bool
	}{
		{"代理未启用时一律直连", func(c *config.Config) { c.Proxy.Enable = config.Bool(false) }, RequestOptions{Proxy: boolPtr(true)}, "https://geo.example.com/", false},
		{"地址缺失时一律直连", func(c *config.Config) { c.Proxy.Host = "" }, RequestOptions{Proxy: boolPtr(true)}, "https://geo.example.com/", false},
		{"调用点强制走代理", nil, RequestOptions{Proxy: boolPtr(true)}, "https://other.example.com/", true},
		{"调用点强制直连覆盖全局use", func(c *config.Config) { c.Proxy.Use = config.Bool(true) }, RequestOptions{Proxy: boolPtr(false)}, "https://geo.example.com/", false},
		{"全局use对所有请求生效", func(c *config.Config) { c.Proxy.Use = config.Bool(true) }, RequestOptions{}, "https://other.example.com/", true},
		{"主机名白名单命中", nil, RequestOptions{}, "https://geo.example.com/page", true},
		{"主机名白名单未命中", nil, RequestOptions{}, "https://other.example.com/page", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			if tt.mod != nil {
				tt.mod(cfg)
			}
			if got := UseProxy(cfg, tt.opts, tt.url); got != tt.want {
				t.Errorf("UseProxy = %v, 期望%v", got, tt.want)
			}
		})
	}
}

func TestTransportCacheReuse(t *testing.T) {
	cache := newTransportCache()

	if cache.get("") != cache.get("") {
		t.Error("直连Transport应全局复用")
	}
	a := cache.get("127.0.0.1:7890")
	b := cache.get("127.0.0.1:7890")
	if a != b {
		t.Error("同一代理地址的Transport应复用")
	}
	if a == cache.get("") {
		t.Error("代理与直连不应共享Transport")
	}
}

func TestResourceMonitor(t *testing.T) {
	// 预留1MB, 正常环境下必然充足
	m := NewResourceMonitor(1)
	if ok, reason := m.CanLaunch(); !ok {
		t.Errorf("预留1MB时应允许启动, reason=%s", reason)
	}
}
