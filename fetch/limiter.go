package fetch

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/RecoveryAshes/scrapekit/config"
)

// abortGrace 超过请求超时后的中止宽限
const abortGrace = 5 * time.Second

// limiterKey 同一(interval, concurrency)元组共享一个调度队列
// 这是刻意的全局池化: 数字相同的两个无关调用点互相背压。
type limiterKey struct {
	interval    time.Duration
	concurrency int
}

// Queue 共享调度队列
// 保证: 并发执行数不超过concurrency; 相邻两次操作的起始间隔不小于interval;
// 超过requestTimeout+宽限的操作被中止。
type Queue struct {
	interval    time.Duration
	concurrency int
	spacing     *rate.Limiter
	slots       chan struct{}
}

func newQueue(interval time.Duration, concurrency int) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	spacing := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		spacing = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Queue{
		interval:    interval,
		concurrency: concurrency,
		spacing:     spacing,
		slots:       make(chan struct{}, concurrency),
	}
}

// Interval 起始间隔
func (q *Queue) Interval() time.Duration { return q.interval }

// Concurrency 并发上限
func (q *Queue) Concurrency() int { return q.concurrency }

// Do 在队列中调度fn
func (q *Queue) Do(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	select {
	case q.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-q.slots }()

	if err := q.spacing.Wait(ctx); err != nil {
		return err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout+abortGrace)
		defer cancel()
	}
	return fn(ctx)
}

// LimiterRegistry 限速队列注册表, 由编排器实例持有
type LimiterRegistry struct {
	mu     sync.Mutex
	queues map[limiterKey]*Queue
}

// NewLimiterRegistry 创建注册表
func NewLimiterRegistry() *LimiterRegistry {
	return &LimiterRegistry{queues: make(map[limiterKey]*Queue)}
}

// Acquire 解析生效的限速参数并返回共享队列
// 优先级: 调用点显式参数 > 主机名配置(enable未关闭时) > 配置档(limiter选项, 默认"default")
func (r *LimiterRegistry) Acquire(rawURL string, opts RequestOptions, cfg *config.Config) *Queue {
	interval, concurrency := resolveLimit(rawURL, opts, cfg)
	key := limiterKey{interval: interval, concurrency: concurrency}

	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[key]
	if !ok {
		q = newQueue(interval, concurrency)
		r.queues[key] = q
	}
	return q
}

func resolveLimit(rawURL string, opts RequestOptions, cfg *config.Config) (time.Duration, int) {
	profile := opts.Limiter
	if profile == "" {
		profile = config.ProfileDefault
	}
	base := cfg.Limits[profile]
	interval, concurrency := base.Interval, base.Concurrency

	if u, err := url.Parse(rawURL); err == nil {
		if lim, ok := cfg.Limits[u.Hostname()]; ok && lim.Enabled() {
			if lim.Interval > 0 {
				interval = lim.Interval
			}
			if lim.Concurrency > 0 {
				concurrency = lim.Concurrency
			}
		}
	}

	if opts.Interval > 0 {
		interval = opts.Interval
	}
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return interval, concurrency
}
