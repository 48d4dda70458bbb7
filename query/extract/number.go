package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// defaultNumberPattern 默认数值模式: 整数或小数(可带负号)
var defaultNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Number 从原始文本中提取数值
// 处理流程:
//  1. 按decimalSep指定的小数分隔符("."或",")去除千位分隔符
//  2. 将小数分隔符统一为"."
//  3. 应用正则(默认匹配整数或小数), 取matchIndex指定的捕获组
//
// 输入格式错误时返回nil, 不报错
func Number(raw string, decimalSep string, pattern *regexp.Regexp, matchIndex int) *float64 {
	if raw == "" {
		return nil
	}

	if decimalSep == "" {
		decimalSep = "."
	}

	// 小数分隔符之外的另一个分隔符视为千位分隔符, 直接去除
	thousandsSep := ","
	if decimalSep == "," {
		thousandsSep = "."
	}
	cleaned := strings.ReplaceAll(raw, thousandsSep, "")
	if decimalSep != "." {
		cleaned = strings.ReplaceAll(cleaned, decimalSep, ".")
	}

	if pattern == nil {
		pattern = defaultNumberPattern
	}

	groups := pattern.FindStringSubmatch(cleaned)
	if groups == nil || matchIndex < 0 || matchIndex >= len(groups) {
		return nil
	}

	value, err := strconv.ParseFloat(groups[matchIndex], 64)
	if err != nil {
		return nil
	}
	return &value
}
