package query

import (
	"testing"
	"time"

	"github.com/RecoveryAshes/scrapekit/errs"
	"github.com/RecoveryAshes/scrapekit/events"
)

const productPage = `<html><body>
	<div class="product">
		<h1>Widget <em>Pro</em> 旗舰版</h1>
		<span class="price">Price: 1,234.56 USD</span>
		<span class="published">发布于 Jan 5, 2024</span>
		<span class="runtime">1:04:11</span>
		<a class="more" href="/p/42">详情</a>
		<img class="lazy" data-src="/img/widget.png" src="/img/placeholder.gif">
		<img class="plain" src="//cdn.example.com/plain.png">
		<img class="responsive" srcset="a.jpg 480w, b.jpg 800w, c.jpg">
		<video poster="/img/poster.jpg" src="/v/clip.mp4"></video>
		<div class="banner" style="background-image: url( /img/bg.png ); color: red"></div>
		<script class="ld" type="application/ld+json">{"sku": "W-42"}</script>
		<p class="meta" data-item-id="42" data-in-stock="yes"></p>
	</div>
</body></html>`

func productContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := Init(productPage, nil, Options{Origin: "https://shop.example.com/catalog/page"})
	if err != nil || ctx == nil {
		t.Fatalf("Init() = %v, %v", ctx, err)
	}
	return ctx
}

func TestContentVsText(t *testing.T) {
	ctx := productContext(t)

	// content: 含嵌套元素的完整文本
	if got := ctx.Content(Sel("h1")); got != "Widget Pro 旗舰版" {
		t.Errorf("Content() = %q", got)
	}
	// text: 仅直接文本子节点, 嵌套的<em>被跳过
	if got := ctx.Text(Sel("h1")); got != "Widget 旗舰版" {
		t.Errorf("Text() = %q, want %q", got, "Widget 旗舰版")
	}
	// 自定义拼接符
	if got := ctx.Text(Sel("h1"), Options{Join: String("|")}); got != "Widget|旗舰版" {
		t.Errorf("Text(join) = %q", got)
	}
}

func TestNumberOp(t *testing.T) {
	ctx := productContext(t)
	got := ctx.Number(Sel(".price"))
	if got == nil || *got != 1234.56 {
		t.Errorf("Number() = %v, want 1234.56", got)
	}
	if got := ctx.Number(Sel(".missing")); got != nil {
		t.Errorf("无匹配应返回nil, got %v", *got)
	}
}

// 数值切片没有空位哨兵, 提取失败的项直接跳过, 关闭过滤也不补零
func TestNumbersSkipFailedExtraction(t *testing.T) {
	ctx, err := Init(`<ul><li>12.5</li><li>暂无报价</li><li>7</li></ul>`, nil)
	if err != nil || ctx == nil {
		t.Fatalf("Init() = %v, %v", ctx, err)
	}

	want := []float64{12.5, 7}
	for _, opts := range []Options{{}, {Filter: Bool(false)}} {
		got := ctx.Numbers(Sel("li"), opts)
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("Numbers(filter=%v) = %v, want %v", opts.Filter, got, want)
		}
	}
}

func TestDateOp(t *testing.T) {
	ctx := productContext(t)

	got, err := ctx.Date(Sel(".published"), Options{Layouts: []string{"Jan 2, 2006"}})
	if err != nil {
		t.Fatalf("Date() error = %v", err)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("Date() = %v, want %v", got, want)
	}
}

func TestDateOp_MissingLayoutsIsUsageError(t *testing.T) {
	ctx := productContext(t)

	// 默认策略(不抛出): 记录后降级为nil
	got, err := ctx.Date(Sel(".published"))
	if err != nil || got != nil {
		t.Errorf("默认策略应降级, got = %v, err = %v", got, err)
	}

	// 抛出策略: 返回NO_DATE_FORMAT错误
	ctx.WithPolicy(errs.Policy{Throw: true})
	_, err = ctx.Date(Sel(".published"))
	if errs.KindOf(err) != errs.KindNoDateFormat {
		t.Errorf("抛出策略应返回NO_DATE_FORMAT, got %v", err)
	}
}

func TestDurationOp(t *testing.T) {
	ctx := productContext(t)
	got := ctx.Duration(Sel(".runtime"))
	if got == nil || *got != 3851*time.Second {
		t.Errorf("Duration() = %v, want 3851s", got)
	}
}

func TestURLOp(t *testing.T) {
	ctx := productContext(t)
	if got := ctx.URL(Sel("a.more")); got != "https://shop.example.com/p/42" {
		t.Errorf("URL() = %q", got)
	}
}

func TestImagePrecedence(t *testing.T) {
	ctx := productContext(t)

	// data-src优先于src(懒加载标记)
	if got := ctx.Image(Sel("img.lazy")); got != "https://shop.example.com/img/widget.png" {
		t.Errorf("Image() = %q", got)
	}
	// 显式属性覆盖优先于data-src
	if got := ctx.Image(Sel("img.lazy"), Options{Attribute: "src"}); got != "https://shop.example.com/img/placeholder.gif" {
		t.Errorf("Image(attribute=src) = %q", got)
	}
	// 协议相对URL补全
	if got := ctx.Image(Sel("img.plain")); got != "https://cdn.example.com/plain.png" {
		t.Errorf("Image(协议相对) = %q", got)
	}
}

func TestSourceSetOp(t *testing.T) {
	ctx := productContext(t)
	set := ctx.SourceSet(Sel("img.responsive"))
	if len(set) != 3 {
		t.Fatalf("SourceSet() 返回 %d 项", len(set))
	}
	if set[0].Descriptor != "fallback" || set[1].Width != 800 || set[2].Width != 480 {
		t.Errorf("排序不符合不变式: %+v", set)
	}
	if set[0].URL != "https://shop.example.com/c.jpg" {
		t.Errorf("URL未按origin解析: %s", set[0].URL)
	}
}

func TestVideoAndPoster(t *testing.T) {
	ctx := productContext(t)
	if got := ctx.Video(Sel("video")); got != "https://shop.example.com/v/clip.mp4" {
		t.Errorf("Video() = %q", got)
	}
	if got := ctx.Poster(Sel("video")); got != "https://shop.example.com/img/poster.jpg" {
		t.Errorf("Poster() = %q", got)
	}
}

func TestStyleOps(t *testing.T) {
	ctx := productContext(t)

	if got := ctx.Style(Sel(".banner"), "color"); got != "red" {
		t.Errorf("Style(color) = %q", got)
	}
	// url()内的空白已被规整
	if got := ctx.Background(Sel(".banner")); got != "https://shop.example.com/img/bg.png" {
		t.Errorf("Background() = %q", got)
	}
	m := ctx.StyleMap(Sel(".banner"))
	if m["background-image"] != "url(/img/bg.png)" {
		t.Errorf("StyleMap() = %v", m)
	}
}

func TestJSONOp(t *testing.T) {
	ctx := productContext(t)
	got := ctx.JSON(Sel("script.ld"))
	m, ok := got.(map[string]any)
	if !ok || m["sku"] != "W-42" {
		t.Errorf("JSON() = %v", got)
	}
}

func TestDatasetOp(t *testing.T) {
	ctx := productContext(t)
	ds := ctx.Dataset(Sel("p.meta"))
	if ds["itemId"] != "42" || ds["inStock"] != "yes" {
		t.Errorf("Dataset() = %v", ds)
	}
}

func TestPluralZeroMatchesIsEmptyNotNil(t *testing.T) {
	ctx := productContext(t)

	if got := ctx.Contents(Sel(".missing")); got == nil || len(got) != 0 {
		t.Errorf("Contents(零匹配) = %v, want 空序列", got)
	}
	if got := ctx.Numbers(Sel(".missing")); got == nil || len(got) != 0 {
		t.Errorf("Numbers(零匹配) = %v, want 空序列", got)
	}
	if got := ctx.Elements(Sel(".missing")); got == nil || len(got) != 0 {
		t.Errorf("Elements(零匹配) = %v, want 空序列", got)
	}
}

func TestExistsAndCount(t *testing.T) {
	ctx := productContext(t)
	if !ctx.Exists(Sel("img")) {
		t.Error("Exists(img) = false")
	}
	if ctx.Exists(Sel(".missing")) {
		t.Error("Exists(.missing) = true")
	}
	if got := ctx.Count(Sel("img")); got != 3 {
		t.Errorf("Count(img) = %d, want 3", got)
	}
}

func TestQueryEventEmission(t *testing.T) {
	ctx := productContext(t)

	var seen []events.Event
	ctx.WithEmitter(func(ev events.Event) { seen = append(seen, ev) })

	ctx.Content(Sel("h1"))
	if len(seen) != 1 {
		t.Fatalf("应发出1个query事件, got %d", len(seen))
	}
	ev := seen[0]
	if ev.Name != events.Query || ev.Operation != "content" {
		t.Errorf("事件 = %+v", ev)
	}
	if ev.URL != "https://shop.example.com/catalog/page" {
		t.Errorf("事件应携带origin, got %q", ev.URL)
	}
}

func TestUnbound(t *testing.T) {
	ctx := productContext(t)

	// 已初始化的Context直接可用
	got, err := Content(ctx, Sel("h1"))
	if err != nil || got != "Widget Pro 旗舰版" {
		t.Errorf("Content() = %q, %v", got, err)
	}

	// 原始DOM元素自动包装
	node := ctx.Element(Sel(".price")).Node()
	n, err := Number(node, nil)
	if err != nil || n == nil || *n != 1234.56 {
		t.Errorf("Number(原始节点) = %v, %v", n, err)
	}

	// 其他类型是INVALID_CONTEXT错误
	if _, err := Text("not a node", nil); errs.KindOf(err) != errs.KindInvalidContext {
		t.Errorf("非法上下文应报INVALID_CONTEXT, got %v", err)
	}
}
