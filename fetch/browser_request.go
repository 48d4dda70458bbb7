package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/events"
)

// BrowserRequest 通过无头浏览器抓取页面
// 走"browser"限速档; 键相同的请求共享池中浏览器进程; 导航失败与
// 非2xx主文档响应都以OK=false的信封返回。
func (c *Client) BrowserRequest(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	cfg := c.conf()
	requestID := uuid.NewString()
	c.bus.Emit(events.Event{Name: events.RequestInit, RequestID: requestID, URL: rawURL})

	if opts.Limiter == "" {
		opts.Limiter = config.ProfileBrowser
	}
	timeout := cfg.RequestTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	resp := &Response{RequestID: requestID, FinalURL: rawURL}
	queue := c.limiters.Acquire(rawURL, opts, cfg)
	err := queue.Do(ctx, timeout, func(ctx context.Context) error {
		return c.browserFetch(ctx, cfg, rawURL, opts, requestID, resp)
	})
	return c.settle(cfg, rawURL, requestID, resp, err)
}

func (c *Client) browserFetch(ctx context.Context, cfg *config.Config, rawURL string, opts RequestOptions, requestID string, resp *Response) error {
	useProxy := UseProxy(cfg, opts, rawURL)
	proxyAddr := ""
	if useProxy {
		proxyAddr = cfg.Proxy.Address()
	}

	var handle *Handle
	var err error
	if opts.Reuse != nil && !*opts.Reuse {
		handle, err = c.pool.AcquireSingle(ctx, opts.Browser, proxyAddr, useProxy)
	} else {
		handle, err = c.pool.Acquire(ctx, opts.Scope, opts.Browser, proxyAddr, useProxy)
	}
	if err != nil {
		return err
	}
	defer c.pool.Release(handle)

	page, err := handle.Browser().Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("创建页面失败: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("关闭页面失败")
		}
	}()
	page = page.Context(ctx)
	if opts.Browser.PageTimeout > 0 {
		page = page.Timeout(opts.Browser.PageTimeout)
	}

	ua := cfg.BrowserUserAgent
	if opts.Browser.UserAgent != "" {
		ua = opts.Browser.UserAgent
	}
	if ua != "" {
		if uerr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); uerr != nil {
			log.Warn().Err(uerr).Msg("设置浏览器UA失败")
		}
	}

	// 仅改写导航请求本身的头部, 页面子资源不受影响
	headers := buildHeaders(cfg, opts)
	delete(headers, "accept-encoding") // 浏览器自行协商编码
	router := page.HijackRequests()
	if herr := router.Add(rawURL, proto.NetworkResourceTypeDocument, func(h *rod.Hijack) {
		for name, value := range headers {
			h.Request.Req().Header.Set(name, value)
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	}); herr != nil {
		log.Warn().Err(herr).Msg("注册导航头部改写失败")
	} else {
		go router.Run()
		defer func() {
			if serr := router.Stop(); serr != nil {
				log.Warn().Err(serr).Msg("停止请求劫持失败")
			}
		}()
	}

	// 捕获主文档的响应状态
	var status int
	var statusText string
	waitStatus := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = e.Response.Status
			statusText = e.Response.StatusText
			return true
		}
		return false
	})

	if nerr := page.Navigate(rawURL); nerr != nil {
		return fmt.Errorf("导航失败: %w", nerr)
	}
	waitStatus()

	resp.Status = status
	resp.StatusText = statusText
	if resp.StatusText == "" {
		resp.StatusText = http.StatusText(status)
	}
	resp.OK = status >= 200 && status < 300
	if info, ierr := page.Info(); ierr == nil {
		resp.FinalURL = info.URL
	}
	if !resp.OK {
		return nil
	}

	if werr := page.WaitLoad(); werr != nil {
		return fmt.Errorf("等待页面加载失败: %w", werr)
	}

	if opts.Control != nil {
		value, cerr := opts.Control(page)
		if cerr != nil {
			c.bus.Emit(events.Event{
				Name: events.ControlError, RequestID: requestID,
				URL: resp.FinalURL, Err: cerr,
			})
			return fmt.Errorf("控制回调失败: %w", cerr)
		}
		resp.ControlValue = value
		c.bus.Emit(events.Event{
			Name: events.ControlSuccess, RequestID: requestID,
			URL: resp.FinalURL, Data: value,
		})
	}

	html, herr := page.HTML()
	if herr != nil {
		return fmt.Errorf("读取页面HTML失败: %w", herr)
	}
	resp.Body = []byte(html)
	resp.Headers = http.Header{"Content-Type": []string{"text/html"}}
	c.classify(cfg, opts, resp)
	return nil
}
