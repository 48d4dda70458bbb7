package extract

import (
	"encoding/json"
	"strings"
)

// JSON 对元素文本做严格JSON解析
// 解析失败返回nil, 不报错(抓取异构页面时部分字段失败属于预期情况)
func JSON(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil
	}
	return value
}
