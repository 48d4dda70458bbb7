package fetch

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/scrapekit/config"
)

// UseProxy 判定本次请求是否走代理
// 代理关闭或地址缺失时一律直连; 调用点显式传值优先于全局use开关,
// 两者都未指定时按主机名白名单匹配。
func UseProxy(cfg *config.Config, opts RequestOptions, rawURL string) bool {
	if !cfg.Proxy.Enabled() || cfg.Proxy.Address() == "" {
		return false
	}
	if opts.Proxy != nil {
		return *opts.Proxy
	}
	if cfg.Proxy.UseAll() {
		return true
	}
	host := hostnameOf(rawURL)
	for _, h := range cfg.Proxy.Hostnames {
		if h == host {
			return true
		}
	}
	return false
}

func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// transportCache 直连与代理两套Transport, 连接池跨请求复用
type transportCache struct {
	mu      sync.Mutex
	direct  *http.Transport
	proxied map[string]*http.Transport
}

func newTransportCache() *transportCache {
	return &transportCache{
		direct: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		proxied: make(map[string]*http.Transport),
	}
}

func (t *transportCache) get(proxyAddr string) *http.Transport {
	if proxyAddr == "" {
		return t.direct
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if tr, ok := t.proxied[proxyAddr]; ok {
		return tr
	}
	addr := proxyAddr
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	proxyURL, err := url.Parse(addr)
	if err != nil {
		log.Warn().Err(err).Str("proxy", proxyAddr).Msg("代理地址解析失败, 回退直连")
		return t.direct
	}
	tr := &http.Transport{
		Proxy:           http.ProxyURL(proxyURL),
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	t.proxied[proxyAddr] = tr
	return tr
}

// httpClient 构造本次请求的HTTP客户端: 代理选路、超时与重定向策略
func (c *Client) httpClient(cfg *config.Config, opts RequestOptions, rawURL string, timeout time.Duration) *http.Client {
	var transport http.RoundTripper = c.transports.get("")
	if UseProxy(cfg, opts, rawURL) {
		transport = c.transports.get(cfg.Proxy.Address())
	}

	follow := cfg.FollowRedirects == nil || *cfg.FollowRedirects
	if opts.FollowRedirects != nil {
		follow = *opts.FollowRedirects
	}
	maxRedirects := cfg.MaxRedirects
	if opts.MaxRedirects > 0 {
		maxRedirects = opts.MaxRedirects
	}

	client := &http.Client{Transport: transport}
	if timeout > 0 {
		client.Timeout = timeout
	}
	if !follow {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if maxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}
	return client
}
