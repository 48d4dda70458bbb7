package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// colonDuration 冒号分隔时长: (HH:)MM:SS
	colonDuration = regexp.MustCompile(`(?:(\d+):)?(\d{1,2}):(\d{2})`)

	// letterDuration 字母分隔时长: #H#M#S (类ISO-8601, 如PT4H11M5S)
	letterDuration = regexp.MustCompile(`(?i)^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?\s*(?:(\d+)\s*s)?`)
)

// Duration 从原始文本中提取时长
// 接受冒号分隔的"(HH:)MM:SS"或字母分隔的"#H#M#S"两种写法,
// 两种模式都不匹配时返回nil
func Duration(raw string) *time.Duration {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if m := colonDuration.FindStringSubmatch(s); m != nil {
		hours := atoiZero(m[1])
		minutes := atoiZero(m[2])
		seconds := atoiZero(m[3])
		d := time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second
		return &d
	}

	// 字母模式全部分量可选, 从第一个数字处开始匹配, 避免前导字母(如"PT")干扰
	start := strings.IndexFunc(s, unicode.IsDigit)
	if start < 0 {
		return nil
	}
	m := letterDuration.FindStringSubmatch(s[start:])
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return nil
	}
	d := time.Duration(atoiZero(m[1]))*time.Hour +
		time.Duration(atoiZero(m[2]))*time.Minute +
		time.Duration(atoiZero(m[3]))*time.Second
	return &d
}

// atoiZero 空串按0处理
func atoiZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
