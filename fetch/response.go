package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/query"
)

// Response 请求结果信封
// 非2xx状态、传输失败和导航失败都以OK=false的信封表达, 是否同时返回
// 错误由throw_errors配置决定。
type Response struct {
	// OK 状态码在[200,300)区间
	OK bool
	// Status HTTP状态码, 传输失败时为0
	Status int
	// StatusText 状态描述, 传输失败时为错误摘要
	StatusText string
	// Headers 响应头
	Headers http.Header
	// Body 解压后的原始响应体
	Body []byte
	// Data JSON响应解析出的结构化数据, 解析失败时为nil
	Data any
	// Document HTML响应装配的查询上下文
	Document *query.Context
	// ControlValue 浏览器控制回调的返回值
	ControlValue any
	// FinalURL 重定向后的最终地址
	FinalURL string
	// RequestID 本次请求的关联ID
	RequestID string
}

// Text 以文本形式返回响应体
func (r *Response) Text() string { return string(r.Body) }

// decompress 按Content-Encoding解压响应体
// 支持gzip/deflate/br; 未知编码原样返回。
func decompress(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		return io.ReadAll(fr)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	default:
		return raw, nil
	}
}

// buildHeaders 组装请求头: 内置默认 < default_headers < headers配置 < 调用点
// 头名统一小写后合并, 空值项丢弃; cookie由配置与调用点拼接。
func buildHeaders(cfg *config.Config, opts RequestOptions) map[string]string {
	ua := cfg.UserAgent
	if opts.API && cfg.APIUserAgent != "" {
		ua = cfg.APIUserAgent
	}
	if opts.UserAgent != "" {
		ua = opts.UserAgent
	}

	headers := map[string]string{
		"user-agent":      ua,
		"accept":          "*/*",
		"accept-encoding": "gzip, deflate, br",
	}
	for _, layer := range []map[string]string{cfg.DefaultHeaders, cfg.Headers, opts.Headers} {
		for name, value := range layer {
			headers[strings.ToLower(name)] = value
		}
	}
	for name, value := range headers {
		if strings.TrimSpace(value) == "" {
			delete(headers, name)
		}
	}

	if cookie := assembleCookies(cfg.Cookies, opts.Cookies); cookie != "" {
		headers["cookie"] = cookie
	}
	return headers
}

func assembleCookies(layers ...map[string]string) string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for name, value := range layer {
			merged[name] = value
		}
	}
	if len(merged) == 0 {
		return ""
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+merged[name])
	}
	return strings.Join(pairs, "; ")
}
