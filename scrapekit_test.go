package scrapekit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/events"
	"github.com/RecoveryAshes/scrapekit/query"
)

func TestNewMergesOverDefaults(t *testing.T) {
	s := New(&config.Config{UserAgent: "custom-ua"})

	cfg := s.Config()
	if cfg.UserAgent != "custom-ua" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Error("未覆盖的默认值应保留")
	}
	if cfg.Limits[config.ProfileBrowser].Concurrency != 2 {
		t.Error("默认限速配置档应保留")
	}
}

func TestConfigureSnapshotIsolation(t *testing.T) {
	s := New(nil)

	before := s.Config()
	s.Configure(&config.Config{UserAgent: "changed"})

	if before.UserAgent == "changed" {
		t.Error("Configure不应影响已取出的配置快照")
	}
	if s.Config().UserAgent != "changed" {
		t.Error("Configure后新快照应携带增量")
	}

	// 修改取出的快照不应污染实例
	snapshot := s.Config()
	snapshot.Headers["injected"] = "x"
	if _, ok := s.Config().Headers["injected"]; ok {
		t.Error("快照应是深拷贝")
	}
}

func TestScraperInitWiring(t *testing.T) {
	s := New(nil)

	var queries []events.Event
	s.On(events.Query, func(ev events.Event) { queries = append(queries, ev) })

	ctx, err := s.Init(`<div><p class="a">内容</p></div>`, nil, query.Options{Origin: "https://example.com/"})
	if err != nil {
		t.Fatalf("Init失败: %v", err)
	}
	if got := ctx.Content(query.Sel(".a")); got != "内容" {
		t.Errorf("Content = %q", got)
	}
	if len(queries) != 1 || queries[0].Operation != "content" {
		t.Fatalf("查询事件 = %+v", queries)
	}
	if ctx.Origin() != "https://example.com/" {
		t.Errorf("Origin = %q", ctx.Origin())
	}

	// 无匹配的预选择器表示"不存在", 不是错误
	none, err := s.Init(`<div></div>`, query.Sel(".missing"))
	if err != nil || none != nil {
		t.Errorf("无匹配应返回(nil, nil), 得到(%v, %v)", none, err)
	}
}

func TestScraperInitAll(t *testing.T) {
	s := New(nil)

	list, err := s.InitAll(`<ul><li>一</li><li>二</li></ul>`, query.Sel("li"))
	if err != nil {
		t.Fatalf("InitAll失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if got := list[1].Content(nil); got != "二" {
		t.Errorf("Content = %q", got)
	}
}

func TestScraperGetEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/next">下一页</a></body></html>`))
	}))
	defer server.Close()

	s := New(&config.Config{
		Limits: map[string]config.Limit{config.ProfileDefault: {Interval: 0, Concurrency: 4}},
	})

	resp, err := s.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get失败: %v", err)
	}
	if resp.Document == nil {
		t.Fatal("应装配查询上下文")
	}
	// 相对链接按最终地址补全
	if got := resp.Document.URL(query.Sel("a")); got != server.URL+"/next" {
		t.Errorf("URL = %q", got)
	}
}

func TestOnOff(t *testing.T) {
	s := New(nil)

	var calls int
	sub := s.On(events.Query, func(events.Event) { calls++ })
	s.Off(events.Query, sub)

	if _, err := s.Init(`<p>x</p>`, nil); err != nil {
		t.Fatalf("Init失败: %v", err)
	}
	if calls != 0 {
		t.Error("退订后不应再收到事件")
	}
}
