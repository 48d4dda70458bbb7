package query

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/RecoveryAshes/scrapekit/errs"
)

const listPage = `<html><body>
	<ul>
		<li class="item">一</li>
		<li class="item">二</li>
		<li class="item">三</li>
	</ul>
</body></html>`

func TestInit_FromText(t *testing.T) {
	ctx, err := Init(listPage, nil)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if ctx == nil {
		t.Fatal("Init() = nil")
	}
	if ctx.Node() == nil {
		t.Fatal("Context根节点不应为nil")
	}
	// 自建DOM树的Context持有文档句柄
	if ctx.doc == nil {
		t.Error("由文本初始化的Context应持有文档句柄")
	}
}

func TestInit_WithSelector(t *testing.T) {
	ctx, err := Init(listPage, Sel("li.item"))
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if ctx == nil {
		t.Fatal("Init() = nil")
	}
	if got := ctx.Content(nil); got != "一" {
		t.Errorf("预选取应命中首个匹配, Content() = %q", got)
	}
}

func TestInit_NoMatchIsAbsenceNotError(t *testing.T) {
	ctx, err := Init(listPage, Sel(".missing"))
	if err != nil {
		t.Fatalf("无匹配不应报错, error = %v", err)
	}
	if ctx != nil {
		t.Errorf("无匹配应返回无值, got %v", ctx)
	}
}

func TestInit_InvalidInput(t *testing.T) {
	_, err := Init(42, nil)
	if errs.KindOf(err) != errs.KindInvalidContext {
		t.Errorf("非法输入应返回INVALID_CONTEXT, got %v", err)
	}
}

func TestInit_FromNode(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(listPage))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := Init(doc, Sel("ul"))
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if ctx == nil {
		t.Fatal("Init() = nil")
	}
	if got := ctx.Count(Sel("li")); got != 3 {
		t.Errorf("Count(li) = %d, want 3", got)
	}
	// 借用外部节点的Context不持有文档句柄
	if ctx.doc != nil {
		t.Error("借用节点初始化的Context不应持有文档句柄")
	}
}

func TestInitAll_FromText(t *testing.T) {
	contexts, err := InitAll(listPage, Sel("li.item"))
	if err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if len(contexts) != 3 {
		t.Fatalf("InitAll() 返回 %d 个Context, want 3", len(contexts))
	}
	want := []string{"一", "二", "三"}
	for i, c := range contexts {
		if got := c.Content(nil); got != want[i] {
			t.Errorf("第%d个Context.Content() = %q, want %q", i, got, want[i])
		}
	}
}

func TestInitAll_FromNodeSlice(t *testing.T) {
	base, err := InitAll(listPage, Sel("li"))
	if err != nil {
		t.Fatal(err)
	}
	nodes := make([]*html.Node, 0, len(base))
	for _, c := range base {
		nodes = append(nodes, c.Node())
	}

	contexts, err := InitAll(nodes, nil)
	if err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if len(contexts) != 3 {
		t.Errorf("节点序列输入应逐个映射, got %d", len(contexts))
	}
}

func TestInitAll_InvalidInput(t *testing.T) {
	_, err := InitAll(3.14, nil)
	if errs.KindOf(err) != errs.KindInvalidContext {
		t.Errorf("非法输入应返回INVALID_CONTEXT, got %v", err)
	}
}

func TestContext_OriginInherited(t *testing.T) {
	ctx, err := Init(listPage, nil, Options{Origin: "https://example.com/list"})
	if err != nil || ctx == nil {
		t.Fatalf("Init() = %v, %v", ctx, err)
	}
	if ctx.Origin() != "https://example.com/list" {
		t.Fatalf("Origin() = %q", ctx.Origin())
	}
	child := ctx.Element(Sel("li"))
	if child == nil {
		t.Fatal("Element() = nil")
	}
	if child.Origin() != "https://example.com/list" {
		t.Errorf("子Context应继承origin, got %q", child.Origin())
	}
}
