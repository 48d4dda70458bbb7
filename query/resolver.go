package query

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Selector 选择器规范: 一个或多个CSS/XPath字符串
// 每个字符串独立做纯语法分类: 以"/"或"("开头按XPath处理, 否则按CSS处理。
type Selector []string

// Sel 构造选择器规范
func Sel(selectors ...string) Selector { return Selector(selectors) }

// isXPath 纯语法分类, 对列表中的每个字符串独立判定
func isXPath(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(")
}

// relativizeXPath 将首段的绝对写法改写为相对写法
// 开头的"/"改写为"./"、"(/"改写为"(./", 使单段前导斜杠表示"相对当前节点";
// 其他位置出现的"//"仍按绝对语义处理——这是刻意保留的非对称行为。
func relativizeXPath(s string) string {
	switch {
	case strings.HasPrefix(s, "/"):
		return "." + s
	case strings.HasPrefix(s, "(/"):
		return "(." + s[1:]
	default:
		return s
	}
}

// resolve 将选择器规范解析为上下文节点下的元素列表
// firstOnly为true时逐个尝试候选选择器, 首个命中即停;
// 否则拼接所有候选的结果, 按首见去重(可经FilterDuplicates关闭)。
func (c *Context) resolve(sel Selector, firstOnly bool, opts Options) []*html.Node {
	if isEmptySelector(sel) {
		// 空选择器: 恒等选择, 返回上下文自身的根元素
		// 但根节点为"整个文档"时返回无匹配, 避免把整棵解析树当成单个元素结果
		if c.node.Type == html.DocumentNode {
			return nil
		}
		return []*html.Node{c.node}
	}

	var matched []*html.Node
	seen := make(map[*html.Node]bool)
	dedup := opts.filterDuplicates()

	for _, s := range sel {
		if s == "" {
			continue
		}
		nodes := c.resolveOne(s)
		if firstOnly {
			if len(nodes) > 0 {
				return nodes[:1]
			}
			continue
		}
		for _, n := range nodes {
			if dedup {
				if seen[n] {
					continue
				}
				seen[n] = true
			}
			matched = append(matched, n)
		}
	}
	return matched
}

// resolveOne 解析单个选择器字符串
func (c *Context) resolveOne(s string) []*html.Node {
	if isXPath(s) {
		nodes, err := htmlquery.QueryAll(c.node, relativizeXPath(s))
		if err != nil {
			log.Debug().Err(err).Str("selector", s).Msg("XPath求值失败")
			return nil
		}
		return nodes
	}
	return goquery.NewDocumentFromNode(c.node).Find(s).Nodes
}

func isEmptySelector(sel Selector) bool {
	for _, s := range sel {
		if s != "" {
			return false
		}
	}
	return true
}
