// Package scrapekit 面向数据提取的抓取工具库
//
// 三条主线: 取数(HTTP与无头浏览器两条路径, 带限速、代理选路与浏览器
// 进程池)、查询(HTML选择器与类型化提取)、反馈(实例级事件总线)。
// Scraper是聚合入口, 每个实例持有独立的配置、事件总线与浏览器池。
package scrapekit

import (
	"context"
	"sync"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/events"
	"github.com/RecoveryAshes/scrapekit/fetch"
	"github.com/RecoveryAshes/scrapekit/query"
)

// Scraper 抓取器
type Scraper struct {
	mu     sync.RWMutex
	cfg    *config.Config
	bus    *events.Bus
	client *fetch.Client
}

// New 创建抓取器, delta在内置默认配置上叠加, 传nil使用纯默认值
func New(delta *config.Config) *Scraper {
	cfg := config.Default()
	if delta != nil {
		cfg = cfg.Merge(delta)
	}
	s := &Scraper{cfg: cfg, bus: events.NewBus()}
	s.client = fetch.NewClient(s.snapshot, s.bus)
	return s
}

// snapshot 当前配置的深拷贝
// 每次请求开头取一次快照, 进行中的请求不受后续Configure影响。
func (s *Scraper) snapshot() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Config 返回当前配置快照, 修改返回值不影响抓取器
func (s *Scraper) Config() *config.Config { return s.snapshot() }

// Configure 写时复制地叠加配置增量
func (s *Scraper) Configure(delta *config.Config) {
	if delta == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = s.cfg.Merge(delta)
}

// On 订阅反馈事件, 返回用于退订的凭据
func (s *Scraper) On(name string, fn events.Handler) events.Subscription {
	return s.bus.On(name, fn)
}

// Off 按凭据退订反馈事件
func (s *Scraper) Off(name string, sub events.Subscription) { s.bus.Off(name, sub) }

// Get 发起GET请求
func (s *Scraper) Get(ctx context.Context, rawURL string, opts ...fetch.RequestOptions) (*fetch.Response, error) {
	return s.client.Get(ctx, rawURL, firstOpt(opts))
}

// Post 发起POST请求
func (s *Scraper) Post(ctx context.Context, rawURL string, body []byte, opts ...fetch.RequestOptions) (*fetch.Response, error) {
	return s.client.Post(ctx, rawURL, body, firstOpt(opts))
}

// Request 发起指定方法的HTTP请求
func (s *Scraper) Request(ctx context.Context, method, rawURL string, body []byte, opts ...fetch.RequestOptions) (*fetch.Response, error) {
	return s.client.Request(ctx, method, rawURL, body, firstOpt(opts))
}

// BrowserRequest 通过无头浏览器抓取页面
func (s *Scraper) BrowserRequest(ctx context.Context, rawURL string, opts ...fetch.RequestOptions) (*fetch.Response, error) {
	return s.client.BrowserRequest(ctx, rawURL, firstOpt(opts))
}

// CloseAllBrowsers 无条件关闭池中所有浏览器进程
func (s *Scraper) CloseAllBrowsers() { s.client.Pool().CloseAll() }

// Init 从HTML文本、节点或既有上下文构造查询上下文
// 装配本实例的错误策略与事件发射器; 无匹配时返回(nil, nil)。
func (s *Scraper) Init(input any, selector query.Selector, opts ...query.Options) (*query.Context, error) {
	c, err := query.Init(input, selector, opts...)
	if err != nil || c == nil {
		return c, err
	}
	return s.attach(c), nil
}

// InitAll 构造选择器每个匹配对应的查询上下文切片
func (s *Scraper) InitAll(input any, selector query.Selector, opts ...query.Options) ([]*query.Context, error) {
	list, err := query.InitAll(input, selector, opts...)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		s.attach(c)
	}
	return list, nil
}

func (s *Scraper) attach(c *query.Context) *query.Context {
	cfg := s.snapshot()
	return c.WithPolicy(cfg.ErrorPolicy()).
		WithEmitter(s.bus.Emit)
}

func firstOpt(opts []fetch.RequestOptions) fetch.RequestOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return fetch.RequestOptions{}
}
