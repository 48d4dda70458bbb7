// Package query 实现选择器解析与类型化提取引擎
// Context将一个DOM节点、一份选项快照和一个origin地址绑定到全部查询操作上,
// 调用方只需提供选择器与选项即可取得类型化的值。
package query

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/scrapekit/errs"
	"github.com/RecoveryAshes/scrapekit/events"
)

// Context 查询上下文: DOM节点 + origin + 选项快照 + 事件回调
// 只能由Init/InitAll产出; 输入无法解析为元素时得到的是"无值"(nil)而非Context。
type Context struct {
	node   *html.Node
	doc    *html.Node // 仅当Context由原始HTML自建DOM树时持有文档句柄
	origin string
	opts   Options
	policy errs.Policy
	emit   func(events.Event)
}

// Origin 相对URL解析所用的页面源地址
func (c *Context) Origin() string { return c.origin }

// Node 上下文根节点(始终非nil)
func (c *Context) Node() *html.Node { return c.node }

// WithOrigin 设置origin, 返回Context自身便于链式调用
func (c *Context) WithOrigin(origin string) *Context {
	c.origin = origin
	return c
}

// WithPolicy 设置错误传播策略
func (c *Context) WithPolicy(policy errs.Policy) *Context {
	c.policy = policy
	return c
}

// WithEmitter 注入事件回调(query事件在每次操作计算前发出)
func (c *Context) WithEmitter(emit func(events.Event)) *Context {
	c.emit = emit
	return c
}

// emitQuery 发出query事件(副作用, 不影响返回值)
func (c *Context) emitQuery(operation string, sel Selector) {
	if c.emit == nil {
		return
	}
	args := make([]any, len(sel))
	for i, s := range sel {
		args[i] = s
	}
	c.emit(events.Event{
		Name:      events.Query,
		Operation: operation,
		Args:      args,
		URL:       c.origin,
	})
}

// inputKind 初始化输入的显式分类
type inputKind int

const (
	kindInvalid inputKind = iota
	kindText              // 原始HTML文本
	kindNode              // 单个DOM节点
	kindNodes             // DOM节点序列
	kindContext           // 已初始化的Context
)

// classifyInput 第一阶段: 判定输入种类
func classifyInput(input any) inputKind {
	switch v := input.(type) {
	case string, []byte:
		return kindText
	case *html.Node:
		if v != nil {
			return kindNode
		}
	case []*html.Node:
		return kindNodes
	case *goquery.Selection:
		if v != nil {
			return kindNodes
		}
	case *Context:
		if v != nil {
			return kindContext
		}
	}
	return kindInvalid
}

// resolveInput 第二阶段: 把输入归一为节点(及其文档句柄)
func resolveInput(input any) (node, doc *html.Node, err error) {
	switch v := input.(type) {
	case string:
		return parseHTML(v)
	case []byte:
		return parseHTML(string(v))
	case *html.Node:
		return v, nil, nil
	case *Context:
		return v.node, v.doc, nil
	}
	return nil, nil, errs.Newf(errs.KindInvalidContext, "无法从 %T 初始化查询上下文", input)
}

// parseHTML 解析HTML文本, 返回文档元素(<html>)与文档句柄
func parseHTML(text string) (node, doc *html.Node, err error) {
	parsed, perr := html.Parse(strings.NewReader(text))
	if perr != nil {
		return nil, nil, errs.Wrap(errs.KindParse, "解析HTML失败", perr)
	}
	return documentElement(parsed), parsed, nil
}

// documentElement 取文档树的根元素, 没有元素时退回文档节点本身
func documentElement(doc *html.Node) *html.Node {
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return child
		}
	}
	return doc
}

// Init 将输入初始化为单个查询上下文
// 输入可以是HTML文本、*html.Node、*goquery.Selection或已有的*Context;
// 给定selector时对输入做首个匹配的预选取。
// 解析不到元素返回(nil, nil)——"没有"是预期内的非异常结果;
// 输入类型非法返回INVALID_CONTEXT错误。
func Init(input any, selector Selector, opts ...Options) (*Context, error) {
	if sel, ok := input.(*goquery.Selection); ok {
		if len(sel.Nodes) == 0 {
			return nil, nil
		}
		input = sel.Nodes[0]
	}

	if classifyInput(input) == kindInvalid {
		return nil, errs.Newf(errs.KindInvalidContext, "无法从 %T 初始化查询上下文", input)
	}

	node, doc, err := resolveInput(input)
	if err != nil {
		return nil, err
	}

	ctx := &Context{node: node, doc: doc, opts: merge(Options{}, opts...)}
	if ctx.opts.Origin != "" {
		ctx.origin = ctx.opts.Origin
	}
	if base, ok := input.(*Context); ok {
		ctx.origin = base.origin
		ctx.policy = base.policy
		ctx.emit = base.emit
		if ctx.opts.Origin != "" {
			ctx.origin = ctx.opts.Origin
		}
	}

	if len(selector) > 0 {
		nodes := ctx.resolve(selector, true, ctx.opts)
		if len(nodes) == 0 {
			return nil, nil
		}
		ctx.node = nodes[0]
	}
	return ctx, nil
}

// InitAll 将输入初始化为一组查询上下文
// 输入为节点序列时逐个映射Init; 为文本/节点时解析selector的全部匹配,
// 每个匹配产出一个Context。非节点、非文本、非序列的输入是INVALID_CONTEXT错误。
func InitAll(input any, selector Selector, opts ...Options) ([]*Context, error) {
	switch v := input.(type) {
	case []*html.Node:
		return contextsFromNodes(v, selector, opts...)
	case *goquery.Selection:
		return contextsFromNodes(v.Nodes, selector, opts...)
	}

	root, err := Init(input, nil, opts...)
	if err != nil || root == nil {
		return nil, err
	}
	nodes := root.resolve(selector, false, root.opts)
	contexts := make([]*Context, 0, len(nodes))
	for _, n := range nodes {
		contexts = append(contexts, &Context{
			node:   n,
			doc:    root.doc,
			origin: root.origin,
			opts:   root.opts,
			policy: root.policy,
			emit:   root.emit,
		})
	}
	return contexts, nil
}

func contextsFromNodes(nodes []*html.Node, selector Selector, opts ...Options) ([]*Context, error) {
	contexts := make([]*Context, 0, len(nodes))
	for _, n := range nodes {
		ctx, err := Init(n, selector, opts...)
		if err != nil {
			return nil, err
		}
		if ctx != nil {
			contexts = append(contexts, ctx)
		}
	}
	return contexts, nil
}

// child 基于同一文档与配置派生子Context
func (c *Context) child(node *html.Node) *Context {
	return &Context{
		node:   node,
		doc:    c.doc,
		origin: c.origin,
		opts:   c.opts,
		policy: c.policy,
		emit:   c.emit,
	}
}
