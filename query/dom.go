package query

import (
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// attrValue 读取节点属性的原始字符串
func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// textContent 元素的完整文本内容(含嵌套元素文本)
func textContent(n *html.Node) string {
	return htmlquery.InnerText(n)
}

// directTexts 仅收集元素的直接文本子节点(跳过嵌套元素)
func directTexts(n *html.Node) []string {
	var texts []string
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			texts = append(texts, child.Data)
		}
	}
	return texts
}

// innerHTML 元素的内部HTML
func innerHTML(n *html.Node) string {
	return htmlquery.OutputHTML(n, false)
}

// styleURLSpaceFix 规整url()内部的空白
// 部分DOM解析器会把"url( x.png )"中的空白处理坏, 读取前先行归一。
var styleURLSpaceFix = regexp.MustCompile(`url\(\s*([^)]*?)\s*\)`)

// parseStyle 解析内联style属性为属性名->值的映射
// 按括号深度感知的";"切分, 避免拆坏url(data:...;base64,...)这类值。
func parseStyle(style string) map[string]string {
	style = styleURLSpaceFix.ReplaceAllString(style, "url($1)")

	props := make(map[string]string)
	depth := 0
	start := 0
	flush := func(decl string) {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			return
		}
		idx := strings.Index(decl, ":")
		if idx <= 0 {
			return
		}
		name := strings.TrimSpace(decl[:idx])
		value := strings.TrimSpace(decl[idx+1:])
		if name != "" && value != "" {
			props[strings.ToLower(name)] = value
		}
	}
	for i, r := range style {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				flush(style[start:i])
				start = i + 1
			}
		}
	}
	flush(style[start:])
	return props
}

// cssURLLiteral 提取CSS url(...)表达式中的URL字面量
var cssURLLiteral = regexp.MustCompile(`url\(\s*['"]?([^'")]*)['"]?\s*\)`)

func extractCSSURL(value string) string {
	m := cssURLLiteral.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// datasetKey 将data-*属性名转为驼峰键: data-foo-bar -> fooBar
func datasetKey(attr string) string {
	raw := strings.TrimPrefix(attr, "data-")
	parts := strings.Split(raw, "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
