package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/errs"
	"github.com/RecoveryAshes/scrapekit/events"
)

// Get 发起GET请求
func (c *Client) Get(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodGet, rawURL, nil, opts)
}

// Post 发起POST请求
func (c *Client) Post(ctx context.Context, rawURL string, body []byte, opts RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPost, rawURL, body, opts)
}

// Request 发起HTTP请求
// 经过限速队列调度; 非2xx与传输失败以OK=false的信封返回,
// throw_errors开启时同时返回带诊断字段的错误。
func (c *Client) Request(ctx context.Context, method, rawURL string, body []byte, opts RequestOptions) (*Response, error) {
	cfg := c.conf()
	requestID := uuid.NewString()
	c.bus.Emit(events.Event{Name: events.RequestInit, RequestID: requestID, URL: rawURL})

	timeout := cfg.RequestTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	resp := &Response{RequestID: requestID, FinalURL: rawURL}
	queue := c.limiters.Acquire(rawURL, opts, cfg)
	err := queue.Do(ctx, timeout, func(ctx context.Context) error {
		return c.fetch(ctx, cfg, method, rawURL, body, opts, timeout, resp)
	})
	return c.settle(cfg, rawURL, requestID, resp, err)
}

// settle 统一收尾: 发布事件并按错误策略决定是否上抛
func (c *Client) settle(cfg *config.Config, rawURL, requestID string, resp *Response, err error) (*Response, error) {
	policy := cfg.ErrorPolicy()
	if err != nil {
		resp.OK = false
		if resp.StatusText == "" {
			resp.StatusText = err.Error()
		}
		c.bus.Emit(events.Event{Name: events.RequestError, RequestID: requestID, URL: rawURL, Err: err})
		terr := errs.Wrap(errs.KindTransport, "请求失败", err).
			WithField("url", rawURL)
		if policy.Throw {
			return resp, terr
		}
		if policy.Log {
			log.Warn().Err(err).Str("url", rawURL).Msg("请求失败")
		}
		return resp, nil
	}

	if !resp.OK {
		c.bus.Emit(events.Event{
			Name: events.RequestError, RequestID: requestID,
			URL: resp.FinalURL, Status: resp.Status,
		})
		herr := errs.Newf(errs.KindHTTPNotOK, "响应状态%d %s", resp.Status, resp.StatusText).
			WithField("status", resp.Status).
			WithField("headers", resp.Headers).
			WithField("url", resp.FinalURL)
		if policy.Throw {
			return resp, herr
		}
		if policy.Log {
			log.Warn().Int("status", resp.Status).Str("url", resp.FinalURL).Msg("响应状态非2xx")
		}
		return resp, nil
	}

	c.bus.Emit(events.Event{
		Name: events.RequestSuccess, RequestID: requestID,
		URL: resp.FinalURL, Status: resp.Status,
	})
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, cfg *config.Config, method, rawURL string, body []byte, opts RequestOptions, timeout time.Duration, resp *Response) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	for name, value := range buildHeaders(cfg, opts) {
		req.Header.Set(name, value)
	}

	client := c.httpClient(cfg, opts, rawURL, timeout)
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}
	if encoding := res.Header.Get("Content-Encoding"); encoding != "" {
		decoded, derr := decompress(encoding, raw)
		if derr != nil {
			log.Warn().Err(derr).Str("encoding", encoding).Msg("响应体解压失败, 保留原始字节")
		} else {
			raw = decoded
		}
	}

	resp.Status = res.StatusCode
	resp.StatusText = http.StatusText(res.StatusCode)
	resp.Headers = res.Header
	resp.Body = raw
	resp.OK = res.StatusCode >= 200 && res.StatusCode < 300
	resp.FinalURL = res.Request.URL.String()
	c.classify(cfg, opts, resp)
	return nil
}
