package query

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/RecoveryAshes/scrapekit/errs"
	"github.com/RecoveryAshes/scrapekit/query/extract"
)

// 本文件实现全部查询操作的单数/复数变体。
// 约定: 单数操作取首个匹配元素, 无匹配时返回零值/nil;
// 复数操作按解析顺序返回序列, 默认过滤空结果(Filter选项可关闭),
// 零匹配返回空序列而非nil语义上的"错误"。

// first 解析单数操作的目标节点
func (c *Context) first(op string, sel Selector, opts Options) *html.Node {
	c.emitQuery(op, sel)
	nodes := c.resolve(sel, true, opts)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// all 解析复数操作的目标节点
func (c *Context) all(op string, sel Selector, opts Options) []*html.Node {
	c.emitQuery(op, sel)
	return c.resolve(sel, false, opts)
}

func (c *Context) merged(opts []Options, opDefaults ...Options) Options {
	layers := make([]Options, 0, len(opDefaults)+1+len(opts))
	layers = append(layers, opDefaults...)
	layers = append(layers, c.opts)
	layers = append(layers, opts...)
	return merge(Options{}, layers...)
}

// collectStrings 复数文本类操作的通用收集: 过滤空值(可关闭)
func collectStrings(nodes []*html.Node, o Options, get func(*html.Node) string) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		v := get(n)
		if o.filter() && v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// --- 元素 ---

// Element 返回首个匹配元素的子Context, 无匹配返回nil
func (c *Context) Element(sel Selector, opts ...Options) *Context {
	o := c.merged(opts)
	n := c.first("element", sel, o)
	if n == nil {
		return nil
	}
	return c.child(n)
}

// Elements 返回全部匹配元素的子Context序列
func (c *Context) Elements(sel Selector, opts ...Options) []*Context {
	o := c.merged(opts)
	nodes := c.all("elements", sel, o)
	out := make([]*Context, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, c.child(n))
	}
	return out
}

// Exists 是否存在匹配元素
func (c *Context) Exists(sel Selector, opts ...Options) bool {
	o := c.merged(opts)
	return c.first("exists", sel, o) != nil
}

// Count 匹配元素数量
func (c *Context) Count(sel Selector, opts ...Options) int {
	o := c.merged(opts)
	return len(c.all("count", sel, o))
}

// --- 文本与标记 ---

// Content 完整文本内容(含嵌套元素文本)
func (c *Context) Content(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("content", sel, o)
	if n == nil {
		return ""
	}
	return c.applyTrim(textContent(n), o)
}

// Contents 全部匹配元素的完整文本内容
func (c *Context) Contents(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("contents", sel, o), o, func(n *html.Node) string {
		return c.applyTrim(textContent(n), o)
	})
}

// Text 仅直接文本子节点的文本(跳过嵌套元素), 按Join拼接
func (c *Context) Text(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("text", sel, o)
	if n == nil {
		return ""
	}
	return c.directText(n, o)
}

// Texts 全部匹配元素的直接文本
func (c *Context) Texts(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("texts", sel, o), o, func(n *html.Node) string {
		return c.directText(n, o)
	})
}

func (c *Context) directText(n *html.Node, o Options) string {
	parts := directTexts(n)
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if o.trim() {
			p = strings.TrimSpace(p)
		}
		if o.filter() && p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, o.join())
}

func (c *Context) applyTrim(s string, o Options) string {
	if o.trim() {
		return strings.TrimSpace(s)
	}
	return s
}

// HTML 首个匹配元素的内部HTML
func (c *Context) HTML(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("html", sel, o)
	if n == nil {
		return ""
	}
	return innerHTML(n)
}

// HTMLs 全部匹配元素的内部HTML
func (c *Context) HTMLs(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("htmls", sel, o), o, innerHTML)
}

// Attribute 首个匹配元素的属性原始值
func (c *Context) Attribute(sel Selector, attr string, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("attribute", sel, o)
	if n == nil {
		return ""
	}
	v, _ := attrValue(n, attr)
	return v
}

// Attributes 全部匹配元素的属性原始值
func (c *Context) Attributes(sel Selector, attr string, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("attributes", sel, o), o, func(n *html.Node) string {
		v, _ := attrValue(n, attr)
		return v
	})
}

// Dataset 首个匹配元素的data-*属性集(键转驼峰)
func (c *Context) Dataset(sel Selector, opts ...Options) map[string]string {
	o := c.merged(opts)
	n := c.first("dataset", sel, o)
	if n == nil {
		return nil
	}
	return nodeDataset(n)
}

// Datasets 全部匹配元素的data-*属性集
func (c *Context) Datasets(sel Selector, opts ...Options) []map[string]string {
	o := c.merged(opts)
	nodes := c.all("datasets", sel, o)
	out := make([]map[string]string, 0, len(nodes))
	for _, n := range nodes {
		ds := nodeDataset(n)
		if o.filter() && len(ds) == 0 {
			continue
		}
		out = append(out, ds)
	}
	return out
}

func nodeDataset(n *html.Node) map[string]string {
	ds := make(map[string]string)
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") {
			ds[datasetKey(a.Key)] = a.Val
		}
	}
	return ds
}

// --- 类型化提取 ---

// Number 从首个匹配元素的文本中提取数值, 失败返回nil
func (c *Context) Number(sel Selector, opts ...Options) *float64 {
	o := c.merged(opts)
	n := c.first("number", sel, o)
	if n == nil {
		return nil
	}
	return extract.Number(textContent(n), o.Separator, o.Match, o.MatchIndex)
}

// Numbers 从全部匹配元素中提取数值
// 提取失败的元素一律跳过: 类型化切片没有空位哨兵可用, 不伪造数值。
func (c *Context) Numbers(sel Selector, opts ...Options) []float64 {
	o := c.merged(opts)
	nodes := c.all("numbers", sel, o)
	out := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		v := extract.Number(textContent(n), o.Separator, o.Match, o.MatchIndex)
		if v == nil {
			continue
		}
		out = append(out, *v)
	}
	return out
}

// Date 从首个匹配元素的文本中提取日期
// Layouts选项必填: 缺失属于用法错误(NO_DATE_FORMAT), 与解析失败(返回nil)不同,
// 按错误策略抛出或记录。解析失败永远只返回nil。
func (c *Context) Date(sel Selector, opts ...Options) (*time.Time, error) {
	o := c.merged(opts)
	n := c.first("date", sel, o)
	if len(o.Layouts) == 0 {
		return nil, c.policy.Handle(errs.New(errs.KindNoDateFormat, "date操作需要Layouts选项"))
	}
	if n == nil {
		return nil, nil
	}
	return extract.Date(textContent(n), o.Layouts, o.Location, o.Match), nil
}

// Dates 从全部匹配元素中提取日期
func (c *Context) Dates(sel Selector, opts ...Options) ([]time.Time, error) {
	o := c.merged(opts)
	nodes := c.all("dates", sel, o)
	if len(o.Layouts) == 0 {
		return nil, c.policy.Handle(errs.New(errs.KindNoDateFormat, "dates操作需要Layouts选项"))
	}
	out := make([]time.Time, 0, len(nodes))
	for _, n := range nodes {
		v := extract.Date(textContent(n), o.Layouts, o.Location, o.Match)
		if v == nil {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

// Duration 从首个匹配元素的文本中提取时长, 不匹配返回nil
func (c *Context) Duration(sel Selector, opts ...Options) *time.Duration {
	o := c.merged(opts)
	n := c.first("duration", sel, o)
	if n == nil {
		return nil
	}
	return extract.Duration(textContent(n))
}

// JSON 对首个匹配元素的文本做严格JSON解析, 失败返回nil
func (c *Context) JSON(sel Selector, opts ...Options) any {
	o := c.merged(opts)
	n := c.first("json", sel, o)
	if n == nil {
		return nil
	}
	return extract.JSON(textContent(n))
}

// JSONs 对全部匹配元素做JSON解析, 默认过滤解析失败的项
func (c *Context) JSONs(sel Selector, opts ...Options) []any {
	o := c.merged(opts)
	nodes := c.all("jsons", sel, o)
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		v := extract.JSON(textContent(n))
		if v == nil && o.filter() {
			continue
		}
		out = append(out, v)
	}
	return out
}
