package extract

import (
	"sort"
	"strconv"
	"strings"
)

// 描述符类型
const (
	DescriptorFallback = "fallback" // 无描述符的候选项
)

// Source 响应式图片候选项(源自srcset标记)
type Source struct {
	URL        string  // 绝对URL(已按origin解析)
	Descriptor string  // "Nw"、"Nh"、"Nx"或"fallback"
	Width      int     // 宽度描述符(Nw), 0表示未指定
	Height     int     // 高度描述符(Nh), 0表示未指定
	Density    float64 // 像素密度描述符(Nx), 0表示未指定
}

// ParseSrcSet 解析srcset属性文本
// 按逗号切分候选项, 每项提取URL与描述符, URL经PrefixURL解析为绝对地址。
// 排序不变式: fallback排最前, 其余按宽度降序、再按高度降序, 相等时保持输入顺序。
// 注意: 宽高混合比较时宽度优先(有宽度的候选项始终排在只有高度的前面)。
func ParseSrcSet(raw, origin, protocol string) []Source {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var sources []Source
	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}

		src := Source{
			URL:        PrefixURL(fields[0], origin, protocol),
			Descriptor: DescriptorFallback,
		}
		for _, token := range fields[1:] {
			if len(token) < 2 {
				continue
			}
			value := token[:len(token)-1]
			switch token[len(token)-1] {
			case 'w':
				if n, err := strconv.Atoi(value); err == nil {
					src.Width = n
					src.Descriptor = token
				}
			case 'h':
				if n, err := strconv.Atoi(value); err == nil {
					src.Height = n
					if src.Descriptor == DescriptorFallback {
						src.Descriptor = token
					}
				}
			case 'x':
				if f, err := strconv.ParseFloat(value, 64); err == nil {
					src.Density = f
					src.Descriptor = token
				}
			}
		}
		sources = append(sources, src)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if (a.Descriptor == DescriptorFallback) != (b.Descriptor == DescriptorFallback) {
			return a.Descriptor == DescriptorFallback
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		return a.Height > b.Height
	})

	return sources
}
