package extract

import (
	"regexp"
	"time"
)

// defaultDatePattern 默认日期模式
// 支持 DD-MM-YYYY、YYYY-MM-DD、Month DD, YYYY 三种常见写法, 可选时分秒
var defaultDatePattern = regexp.MustCompile(
	`(?:\d{1,2}-\d{1,2}-\d{4}|\d{4}-\d{1,2}-\d{1,2}|[A-Z][A-Za-z]+\.? \d{1,2},? \d{4})` +
		`(?:[ T]\d{1,2}:\d{2}(?::\d{2})?)?`)

// Date 从原始文本中提取日期
// 先用正则(默认或自定义)定位日期子串, 再按layouts给出的Go时间布局依次尝试解析,
// 时区由loc指定(默认UTC)。解析失败返回nil, 不报错。
//
// 注意: layouts为空属于用法错误, 由调用方在查询层处理(NO_DATE_FORMAT),
// 本函数对空layouts同样返回nil。
func Date(raw string, layouts []string, loc *time.Location, pattern *regexp.Regexp) *time.Time {
	if raw == "" || len(layouts) == 0 {
		return nil
	}

	if loc == nil {
		loc = time.UTC
	}
	if pattern == nil {
		pattern = defaultDatePattern
	}

	matched := pattern.FindString(raw)
	if matched == "" {
		return nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, matched, loc); err == nil {
			return &t
		}
	}
	return nil
}
