package query

import (
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/scrapekit/query/extract"
)

// 本文件实现URL、媒体与样式类操作。
// 所有URL类结果都经extract.PrefixURL按origin解析为绝对地址。

func (c *Context) prefix(fragment string, o Options) string {
	origin := o.Origin
	if origin == "" {
		origin = c.origin
	}
	return extract.PrefixURL(fragment, origin, o.Protocol)
}

// URL 读取首个匹配元素的链接属性(默认href)并解析为绝对URL
func (c *Context) URL(sel Selector, opts ...Options) string {
	o := c.merged(opts, Options{Attribute: "href"})
	n := c.first("url", sel, o)
	if n == nil {
		return ""
	}
	v, _ := attrValue(n, o.Attribute)
	return c.prefix(v, o)
}

// URLs 读取全部匹配元素的链接属性
func (c *Context) URLs(sel Selector, opts ...Options) []string {
	o := c.merged(opts, Options{Attribute: "href"})
	return collectStrings(c.all("urls", sel, o), o, func(n *html.Node) string {
		v, _ := attrValue(n, o.Attribute)
		if v == "" {
			return ""
		}
		return c.prefix(v, o)
	})
}

// mediaSource 图片/视频源地址: 显式属性覆盖 > data-src > src
// data-src优先兼容常见的懒加载标记。
func mediaSource(n *html.Node, o Options) string {
	if o.Attribute != "" {
		v, _ := attrValue(n, o.Attribute)
		return v
	}
	if v, ok := attrValue(n, "data-src"); ok && v != "" {
		return v
	}
	v, _ := attrValue(n, "src")
	return v
}

// Image 首个匹配元素的图片地址
func (c *Context) Image(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("image", sel, o)
	if n == nil {
		return ""
	}
	return c.prefix(mediaSource(n, o), o)
}

// Images 全部匹配元素的图片地址
func (c *Context) Images(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("images", sel, o), o, func(n *html.Node) string {
		v := mediaSource(n, o)
		if v == "" {
			return ""
		}
		return c.prefix(v, o)
	})
}

// Video 首个匹配元素的视频地址
func (c *Context) Video(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("video", sel, o)
	if n == nil {
		return ""
	}
	return c.prefix(mediaSource(n, o), o)
}

// Videos 全部匹配元素的视频地址
func (c *Context) Videos(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("videos", sel, o), o, func(n *html.Node) string {
		v := mediaSource(n, o)
		if v == "" {
			return ""
		}
		return c.prefix(v, o)
	})
}

// Poster 首个匹配元素的poster属性地址
func (c *Context) Poster(sel Selector, opts ...Options) string {
	o := c.merged(opts, Options{Attribute: "poster"})
	n := c.first("poster", sel, o)
	if n == nil {
		return ""
	}
	v, _ := attrValue(n, o.Attribute)
	return c.prefix(v, o)
}

// Posters 全部匹配元素的poster属性地址
func (c *Context) Posters(sel Selector, opts ...Options) []string {
	o := c.merged(opts, Options{Attribute: "poster"})
	return collectStrings(c.all("posters", sel, o), o, func(n *html.Node) string {
		v, _ := attrValue(n, o.Attribute)
		if v == "" {
			return ""
		}
		return c.prefix(v, o)
	})
}

// SourceSet 解析首个匹配元素的srcset属性
func (c *Context) SourceSet(sel Selector, opts ...Options) []extract.Source {
	o := c.merged(opts, Options{Attribute: "srcset"})
	n := c.first("sourceSet", sel, o)
	if n == nil {
		return nil
	}
	return c.parseSrcSet(n, o)
}

// SourceSets 解析全部匹配元素的srcset属性
func (c *Context) SourceSets(sel Selector, opts ...Options) [][]extract.Source {
	o := c.merged(opts, Options{Attribute: "srcset"})
	nodes := c.all("sourceSets", sel, o)
	out := make([][]extract.Source, 0, len(nodes))
	for _, n := range nodes {
		set := c.parseSrcSet(n, o)
		if o.filter() && len(set) == 0 {
			continue
		}
		out = append(out, set)
	}
	return out
}

func (c *Context) parseSrcSet(n *html.Node, o Options) []extract.Source {
	raw, _ := attrValue(n, o.Attribute)
	origin := o.Origin
	if origin == "" {
		origin = c.origin
	}
	return extract.ParseSrcSet(raw, origin, o.Protocol)
}

// --- 样式 ---

// Style 首个匹配元素内联样式中指定属性的值
func (c *Context) Style(sel Selector, property string, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("style", sel, o)
	if n == nil {
		return ""
	}
	return nodeStyle(n)[property]
}

// Styles 全部匹配元素内联样式中指定属性的值
func (c *Context) Styles(sel Selector, property string, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("styles", sel, o), o, func(n *html.Node) string {
		return nodeStyle(n)[property]
	})
}

// StyleMap 首个匹配元素的完整内联样式属性映射
func (c *Context) StyleMap(sel Selector, opts ...Options) map[string]string {
	o := c.merged(opts)
	n := c.first("style", sel, o)
	if n == nil {
		return nil
	}
	return nodeStyle(n)
}

// StyleURL 提取样式属性(默认background-image)中url(...)的URL字面量
func (c *Context) StyleURL(sel Selector, opts ...Options) string {
	o := c.merged(opts)
	n := c.first("styleUrl", sel, o)
	if n == nil {
		return ""
	}
	return c.styleURLOf(n, o)
}

// StyleURLs 全部匹配元素的样式URL字面量
func (c *Context) StyleURLs(sel Selector, opts ...Options) []string {
	o := c.merged(opts)
	return collectStrings(c.all("styleUrls", sel, o), o, func(n *html.Node) string {
		return c.styleURLOf(n, o)
	})
}

// Background 首个匹配元素的背景图地址(background-image的url字面量)
func (c *Context) Background(sel Selector, opts ...Options) string {
	o := c.merged(opts, Options{StyleAttribute: "background-image"})
	n := c.first("background", sel, o)
	if n == nil {
		return ""
	}
	return c.styleURLOf(n, o)
}

// Backgrounds 全部匹配元素的背景图地址
func (c *Context) Backgrounds(sel Selector, opts ...Options) []string {
	o := c.merged(opts, Options{StyleAttribute: "background-image"})
	return collectStrings(c.all("backgrounds", sel, o), o, func(n *html.Node) string {
		return c.styleURLOf(n, o)
	})
}

func (c *Context) styleURLOf(n *html.Node, o Options) string {
	value := nodeStyle(n)[o.styleAttribute()]
	if value == "" {
		return ""
	}
	literal := extractCSSURL(value)
	if literal == "" {
		return ""
	}
	return c.prefix(literal, o)
}

func nodeStyle(n *html.Node) map[string]string {
	raw, _ := attrValue(n, "style")
	if raw == "" {
		return map[string]string{}
	}
	return parseStyle(raw)
}
