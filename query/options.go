package query

import (
	"regexp"
	"time"
)

// Options 查询选项
// 按固定优先级合并: 操作内置默认 < Context级选项 < 调用点选项。
// 与操作无关的字段会被该操作忽略, 不报错。
type Options struct {
	// Attribute 读取的属性名(url/image/video/sourceSet等操作的显式覆盖)
	Attribute string

	// FilterDuplicates 数组选择器的结果去重(首见保留), 默认开启
	FilterDuplicates *bool

	// Filter 复数操作过滤空值/nil结果, 默认开启
	Filter *bool

	// Trim 文本去除首尾空白, 默认开启
	Trim *bool

	// Join text操作拼接直接文本子节点时的分隔符, 默认" "
	Join *string

	// Separator 数值提取的小数分隔符("."或","), 另一个符号按千位分隔符去除
	Separator string

	// Match 数值/日期提取的自定义正则
	Match *regexp.Regexp

	// MatchIndex Match命中后取用的捕获组索引
	MatchIndex int

	// Layouts 日期解析的Go时间布局(date操作必填)
	Layouts []string

	// Location 日期解析时区, 默认UTC
	Location *time.Location

	// Origin 相对URL解析的页面源地址(覆盖Context自带的origin)
	Origin string

	// Protocol 协议相对URL的补全协议, 默认"https"
	Protocol string

	// StyleAttribute styleUrl/background读取的样式属性, 默认"background-image"
	StyleAttribute string
}

// Bool 构造*bool选项值
func Bool(v bool) *bool { return &v }

// String 构造*string选项值
func String(s string) *string { return &s }

// merge 将layers按顺序叠加到base之上, 非零值字段覆盖
func merge(base Options, layers ...Options) Options {
	out := base
	for _, layer := range layers {
		if layer.Attribute != "" {
			out.Attribute = layer.Attribute
		}
		if layer.FilterDuplicates != nil {
			out.FilterDuplicates = layer.FilterDuplicates
		}
		if layer.Filter != nil {
			out.Filter = layer.Filter
		}
		if layer.Trim != nil {
			out.Trim = layer.Trim
		}
		if layer.Join != nil {
			out.Join = layer.Join
		}
		if layer.Separator != "" {
			out.Separator = layer.Separator
		}
		if layer.Match != nil {
			out.Match = layer.Match
		}
		if layer.MatchIndex != 0 {
			out.MatchIndex = layer.MatchIndex
		}
		if len(layer.Layouts) > 0 {
			out.Layouts = layer.Layouts
		}
		if layer.Location != nil {
			out.Location = layer.Location
		}
		if layer.Origin != "" {
			out.Origin = layer.Origin
		}
		if layer.Protocol != "" {
			out.Protocol = layer.Protocol
		}
		if layer.StyleAttribute != "" {
			out.StyleAttribute = layer.StyleAttribute
		}
	}
	return out
}

// 选项默认值读取

func (o Options) filter() bool {
	return o.Filter == nil || *o.Filter
}

func (o Options) filterDuplicates() bool {
	return o.FilterDuplicates == nil || *o.FilterDuplicates
}

func (o Options) trim() bool {
	return o.Trim == nil || *o.Trim
}

func (o Options) join() string {
	if o.Join == nil {
		return " "
	}
	return *o.Join
}

func (o Options) styleAttribute() string {
	if o.StyleAttribute == "" {
		return "background-image"
	}
	return o.StyleAttribute
}
