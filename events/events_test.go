package events

import "testing"

func TestBus_OnEmitOff(t *testing.T) {
	bus := NewBus()

	var got []string
	sub := bus.On(Query, func(ev Event) { got = append(got, ev.URL) })

	bus.Emit(Event{Name: Query, URL: "https://a.example"})
	if len(got) != 1 || got[0] != "https://a.example" {
		t.Fatalf("订阅后应收到事件, got = %v", got)
	}

	// 其他事件名不触发
	bus.Emit(Event{Name: RequestInit, URL: "https://b.example"})
	if len(got) != 1 {
		t.Errorf("不同事件名不应触发, got = %v", got)
	}

	bus.Off(Query, sub)
	bus.Emit(Event{Name: Query, URL: "https://c.example"})
	if len(got) != 1 {
		t.Errorf("退订后不应再收到事件, got = %v", got)
	}
}

func TestBus_MultipleHandlers(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.On(RequestSuccess, func(Event) { count++ })
	bus.On(RequestSuccess, func(Event) { count++ })

	bus.Emit(Event{Name: RequestSuccess})
	if count != 2 {
		t.Errorf("两个订阅者都应被调用, count = %d", count)
	}
}

// 同一字面量在循环中生成的闭包共享代码指针, 退订必须只影响对应的订阅。
func TestBus_OffRemovesOnlyOwnSubscription(t *testing.T) {
	bus := NewBus()

	counts := make([]int, 2)
	subs := make([]Subscription, 2)
	for i := range counts {
		i := i
		subs[i] = bus.On(Query, func(Event) { counts[i]++ })
	}

	bus.Off(Query, subs[0])
	bus.Emit(Event{Name: Query})

	if counts[0] != 0 {
		t.Errorf("已退订的闭包不应被调用, counts[0] = %d", counts[0])
	}
	if counts[1] != 1 {
		t.Errorf("未退订的闭包应继续收到事件, counts[1] = %d", counts[1])
	}
}
