// Package events 提供进程内的发布/订阅反馈总线
// 每个Scraper实例持有独立的Bus, 测试可以各自构造互不干扰的实例。
package events

import (
	"sync"
	"sync/atomic"
)

// 事件名
const (
	Query          = "query"
	RequestInit    = "requestInit"
	RequestSuccess = "requestSuccess"
	RequestError   = "requestError"
	ControlSuccess = "controlSuccess"
	ControlError   = "controlError"
	BrowserLaunch  = "browserLaunch"
	BrowserRetire  = "browserRetire"
	BrowserClose   = "browserClose"
)

// Event 总线事件
type Event struct {
	Name      string
	RequestID string // 请求事件的唯一ID
	URL       string
	Operation string // query事件的操作名
	Args      []any  // query事件的调用参数
	Status    int    // 请求事件的HTTP状态码
	Err       error
	Data      any
}

// Handler 事件处理函数
type Handler func(Event)

// Subscription 订阅凭据, Off按凭据退订
// Go函数不可比较, 同一字面量生成的不同闭包共享代码指针,
// 按函数标识退订会误删, 因此订阅时返回总线范围内唯一的凭据。
type Subscription uint64

type entry struct {
	id Subscription
	fn Handler
}

// Bus 事件总线
type Bus struct {
	mu       sync.RWMutex
	nextID   atomic.Uint64
	handlers map[string][]entry
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]entry)}
}

// On 订阅事件, 返回用于退订的凭据
func (b *Bus) On(name string, fn Handler) Subscription {
	if fn == nil {
		return 0
	}
	id := Subscription(b.nextID.Add(1))
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], entry{id: id, fn: fn})
	return id
}

// Off 按凭据退订事件
func (b *Bus) Off(name string, sub Subscription) {
	if sub == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[name]
	for i, e := range list {
		if e.id == sub {
			b.handlers[name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit 同步派发事件给所有订阅者
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	list := make([]entry, len(b.handlers[ev.Name]))
	copy(list, b.handlers[ev.Name])
	b.mu.RUnlock()

	for _, e := range list {
		e.fn(ev)
	}
}
