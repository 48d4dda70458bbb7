package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/scrapekit/events"
)

// launchFunc 浏览器启动函数, 测试时可注入替身
type launchFunc func(opts BrowserOptions, proxyAddr string) (*rod.Browser, error)

// Handle 池中的一个浏览器句柄
// ready在启动完成(成功或失败)后关闭; 启动结果写入browser/err。
type Handle struct {
	key       string
	ready     chan struct{}
	browser   *rod.Browser
	err       error
	useCount  int
	active    int
	retired   bool
	singleUse bool
	closed    bool
}

// Browser 启动完成后的浏览器实例, 仅在Acquire成功返回后有效
func (h *Handle) Browser() *rod.Browser { return h.browser }

// BrowserPool 按配置键复用浏览器进程的池
// 键相同的并发请求共享同一进程; 句柄在退役后等到最后一个活跃使用者
// 释放才关闭进程。
type BrowserPool struct {
	mu      sync.Mutex
	handles map[string]*Handle
	// retiring 已退役但仍有活跃使用者的句柄, CloseAll也要覆盖到
	retiring    map[*Handle]struct{}
	launch      launchFunc
	retireAfter func() int
	monitor     *ResourceMonitor
	bus         *events.Bus
}

// NewBrowserPool 创建浏览器池
// 退役阈值每次获取时读取, 配置的运行期调整即时生效; 返回<=0时句柄永不退役。
func NewBrowserPool(retireAfter func() int, bus *events.Bus) *BrowserPool {
	return &BrowserPool{
		handles:     make(map[string]*Handle),
		retiring:    make(map[*Handle]struct{}),
		launch:      launchBrowser,
		retireAfter: retireAfter,
		monitor:     NewResourceMonitor(0),
		bus:         bus,
	}
}

// handleKey 由作用域、浏览器参数和代理开关派生的稳定键
func handleKey(scope string, opts BrowserOptions, useProxy bool) string {
	payload, _ := json.Marshal(opts)
	sum := sha256.New()
	sum.Write([]byte(scope))
	sum.Write([]byte{0})
	sum.Write(payload)
	if useProxy {
		sum.Write([]byte{1})
	}
	return hex.EncodeToString(sum.Sum(nil))
}

// Acquire 获取键对应的句柄, 不存在时启动新浏览器
// 启动完成前句柄就已注册, 并发获取同键时只有第一个调用方真正启动进程,
// 其余在ready上等待同一结果。
func (p *BrowserPool) Acquire(ctx context.Context, scope string, opts BrowserOptions, proxyAddr string, useProxy bool) (*Handle, error) {
	key := handleKey(scope, opts, useProxy)

	p.mu.Lock()
	if h, ok := p.handles[key]; ok {
		h.useCount++
		h.active++
		threshold := p.retireAfter()
		retire := threshold > 0 && h.useCount >= threshold
		if retire {
			// 到达退役阈值: 移出注册表, 后续获取将启动新进程;
			// 进程关闭前记入retiring, 保持CloseAll可达。
			h.retired = true
			delete(p.handles, key)
			p.retiring[h] = struct{}{}
		}
		p.mu.Unlock()
		if retire {
			p.emit(events.BrowserRetire, key)
		}
		return p.await(ctx, h)
	}

	h := &Handle{key: key, ready: make(chan struct{}), useCount: 1, active: 1}
	p.handles[key] = h
	p.mu.Unlock()

	if ok, reason := p.monitor.CanLaunch(); !ok {
		log.Warn().Str("reason", reason).Msg("内存余量不足, 仍尝试启动浏览器")
	}

	addr := ""
	if useProxy {
		addr = proxyAddr
	}
	b, err := p.launch(opts, addr)

	p.mu.Lock()
	h.browser = b
	h.err = err
	if err != nil {
		// 启动失败的句柄移出注册表, 后续获取可以重试
		delete(p.handles, key)
	}
	p.mu.Unlock()
	close(h.ready)

	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	p.emit(events.BrowserLaunch, key)
	return h, nil
}

// AcquireSingle 绕过池, 启动一次性浏览器, Release时立即关闭
func (p *BrowserPool) AcquireSingle(ctx context.Context, opts BrowserOptions, proxyAddr string, useProxy bool) (*Handle, error) {
	h := &Handle{ready: make(chan struct{}), useCount: 1, active: 1, singleUse: true}
	addr := ""
	if useProxy {
		addr = proxyAddr
	}
	b, err := p.launch(opts, addr)
	h.browser = b
	h.err = err
	close(h.ready)
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	p.emit(events.BrowserLaunch, "")
	return h, nil
}

func (p *BrowserPool) await(ctx context.Context, h *Handle) (*Handle, error) {
	select {
	case <-h.ready:
	case <-ctx.Done():
		p.Release(h)
		return nil, ctx.Err()
	}
	if h.err != nil {
		p.Release(h)
		return nil, fmt.Errorf("启动浏览器失败: %w", h.err)
	}
	return h, nil
}

// Release 归还句柄
// 退役或一次性句柄在最后一个活跃使用者释放时关闭进程。
func (p *BrowserPool) Release(h *Handle) {
	if h == nil {
		return
	}
	p.mu.Lock()
	h.active--
	shouldClose := (h.retired || h.singleUse) && h.active <= 0 && !h.closed
	if shouldClose {
		h.closed = true
		delete(p.retiring, h)
	}
	p.mu.Unlock()

	if shouldClose {
		if h.browser != nil {
			if err := h.browser.Close(); err != nil {
				log.Warn().Err(err).Msg("关闭浏览器失败")
			}
		}
		p.emit(events.BrowserClose, h.key)
	}
}

// CloseAll 无条件关闭所有池中浏览器, 包括仍在使用的
func (p *BrowserPool) CloseAll() {
	p.mu.Lock()
	snapshot := make([]*Handle, 0, len(p.handles)+len(p.retiring))
	for _, h := range p.handles {
		snapshot = append(snapshot, h)
	}
	for h := range p.retiring {
		snapshot = append(snapshot, h)
	}
	p.handles = make(map[string]*Handle)
	p.retiring = make(map[*Handle]struct{})
	p.mu.Unlock()

	for _, h := range snapshot {
		<-h.ready
		p.mu.Lock()
		done := h.closed
		h.closed = true
		browser := h.browser
		p.mu.Unlock()
		if done {
			continue
		}
		if browser != nil {
			if err := browser.Close(); err != nil {
				log.Warn().Err(err).Msg("关闭浏览器失败")
			}
		}
		p.emit(events.BrowserClose, h.key)
	}
}

func (p *BrowserPool) emit(name string, key string) {
	if p.bus == nil {
		return
	}
	p.bus.Emit(events.Event{Name: name, Data: key})
}

// launchBrowser 启动真实浏览器进程并建立DevTools连接
func launchBrowser(opts BrowserOptions, proxyAddr string) (*rod.Browser, error) {
	l := launcher.New().Headless(opts.headless())
	l = l.Set("ignore-certificate-errors")
	for k, v := range opts.Flags {
		l = l.Set(flags.Flag(k), v)
	}
	if proxyAddr != "" {
		l = l.Proxy(proxyAddr)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器进程失败: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}
	return browser, nil
}
