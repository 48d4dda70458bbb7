package config

import (
	"testing"
	"time"
)

func TestConfig_Merge(t *testing.T) {
	base := Default()
	snapshot := base.Clone()

	delta := &Config{
		RequestTimeout: 5 * time.Second,
		UserAgent:      "scrapekit-test/1.0",
		Limits: map[string]Limit{
			"api.example.com": {Interval: 500 * time.Millisecond, Concurrency: 1},
		},
		Headers: map[string]string{"X-Test": "1"},
		Proxy:   Proxy{Enable: Bool(true), Host: "127.0.0.1", Port: 8080},
	}

	merged := base.Merge(delta)

	// 原对象保持不变(写时复制)
	if base.RequestTimeout != snapshot.RequestTimeout ||
		base.UserAgent != snapshot.UserAgent ||
		len(base.Limits) != len(snapshot.Limits) {
		t.Errorf("Merge() 不应修改原配置")
	}
	if _, ok := base.Limits["api.example.com"]; ok {
		t.Errorf("Merge() 不应向原配置的Limits写入新键")
	}

	if merged.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", merged.RequestTimeout)
	}
	if merged.UserAgent != "scrapekit-test/1.0" {
		t.Errorf("UserAgent = %q", merged.UserAgent)
	}
	if lim := merged.Limits["api.example.com"]; lim.Concurrency != 1 {
		t.Errorf("主机名限速未合并: %+v", lim)
	}
	// 默认配置档保留
	if lim := merged.Limits[ProfileDefault]; lim.Concurrency != 4 {
		t.Errorf("默认配置档丢失: %+v", lim)
	}
	if merged.Proxy.Address() != "127.0.0.1:8080" {
		t.Errorf("Proxy.Address() = %q", merged.Proxy.Address())
	}
	if merged.Headers["X-Test"] != "1" {
		t.Errorf("Headers未合并: %v", merged.Headers)
	}
}

func TestConfig_MergeNil(t *testing.T) {
	base := Default()
	merged := base.Merge(nil)
	if merged == base {
		t.Fatal("Merge(nil) 应返回新对象")
	}
	if merged.RequestTimeout != base.RequestTimeout {
		t.Errorf("Merge(nil) 应保持原值")
	}
}

// 三态开关必须能在后续Merge中回退, 不是只增不减的棘轮
func TestConfig_MergeRevertsSwitches(t *testing.T) {
	base := Default().Merge(&Config{ThrowErrors: Bool(true)})
	if !base.ErrorPolicy().Throw {
		t.Fatal("前置条件: ThrowErrors应已开启")
	}

	merged := base.Merge(&Config{ThrowErrors: Bool(false), LogErrors: Bool(false)})
	policy := merged.ErrorPolicy()
	if policy.Throw {
		t.Error("ThrowErrors=false的增量应关闭上抛")
	}
	if policy.Log {
		t.Error("LogErrors=false的增量应关闭日志")
	}

	// 未设置的字段不覆盖已有取值
	kept := merged.Merge(&Config{RequestTimeout: time.Second})
	if kept.ErrorPolicy().Throw || kept.ErrorPolicy().Log {
		t.Error("增量未设置的开关不应被改写")
	}
}

// 代理字段逐项合并: 只设置其中一项的增量同样生效
func TestConfig_MergeProxyFieldsIndependently(t *testing.T) {
	base := Default().Merge(&Config{
		Proxy: Proxy{Enable: Bool(true), Host: "127.0.0.1", Port: 8080},
	})

	useOnly := base.Merge(&Config{Proxy: Proxy{Use: Bool(true)}})
	if !useOnly.Proxy.UseAll() {
		t.Error("仅设置Use的增量应生效")
	}
	if !useOnly.Proxy.Enabled() || useOnly.Proxy.Address() != "127.0.0.1:8080" {
		t.Errorf("未设置的代理字段应保留: %+v", useOnly.Proxy)
	}

	hostsOnly := base.Merge(&Config{Proxy: Proxy{Hostnames: []string{"geo.example.com"}}})
	if len(hostsOnly.Proxy.Hostnames) != 1 || hostsOnly.Proxy.Hostnames[0] != "geo.example.com" {
		t.Errorf("仅设置Hostnames的增量应生效: %v", hostsOnly.Proxy.Hostnames)
	}

	disabled := base.Merge(&Config{Proxy: Proxy{Enable: Bool(false)}})
	if disabled.Proxy.Enabled() {
		t.Error("Enable=false的增量应关闭代理")
	}
}

func TestLimit_Enabled(t *testing.T) {
	off := false
	tests := []struct {
		name  string
		limit Limit
		want  bool
	}{
		{"未设置视为生效", Limit{}, true},
		{"显式关闭", Limit{Enable: &off}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.limit.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
