// Package fetch 实现请求编排: HTTP与浏览器两条取数路径、
// 限速调度、代理选路和浏览器进程池。
package fetch

import (
	"encoding/json"
	"strings"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/events"
	"github.com/RecoveryAshes/scrapekit/query"
)

// Client 请求编排器
// 配置以快照函数注入, 每次请求开头取一次快照, 请求过程中的全局
// 配置变更不影响已开始的请求。
type Client struct {
	conf       func() *config.Config
	bus        *events.Bus
	limiters   *LimiterRegistry
	pool       *BrowserPool
	transports *transportCache
}

// NewClient 创建编排器
// 退役阈值通过快照函数透传给浏览器池, 运行期配置调整对后续获取生效。
func NewClient(conf func() *config.Config, bus *events.Bus) *Client {
	return &Client{
		conf:       conf,
		bus:        bus,
		limiters:   NewLimiterRegistry(),
		pool:       NewBrowserPool(func() int { return conf().ClientRetirement }, bus),
		transports: newTransportCache(),
	}
}

// Pool 浏览器池, 供上层关停
func (c *Client) Pool() *BrowserPool { return c.pool }

// classify 按内容类型归类响应体
// JSON解析为结构化数据(失败时静默回退为原始文本); HTML装配为查询
// 上下文, origin取重定向后的最终地址。
func (c *Client) classify(cfg *config.Config, opts RequestOptions, resp *Response) {
	contentType := strings.ToLower(resp.Headers.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/javascript") {
		var data any
		if err := json.Unmarshal(resp.Body, &data); err == nil {
			resp.Data = data
		}
		return
	}
	if opts.NoExtract || len(resp.Body) == 0 {
		return
	}
	doc, err := query.Init(string(resp.Body), nil, query.Options{Origin: resp.FinalURL})
	if err != nil || doc == nil {
		return
	}
	doc.WithPolicy(cfg.ErrorPolicy()).
		WithEmitter(c.bus.Emit)
	resp.Document = doc
}
