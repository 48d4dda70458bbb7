package extract

import (
	"net/url"
	"strings"
)

// DefaultProtocol 协议相对URL的默认补全协议
const DefaultProtocol = "https"

// PrefixURL 将可能为相对路径的URL片段解析为绝对URL
// 规则:
//   - 已是绝对URL("http..."开头): 原样返回
//   - 协议相对("//host/path"): 补全protocol
//   - 根相对("/path"): 补全origin的协议+主机
//   - "./path": 基于origin的路径目录解析(目录以"/"规整)
//   - 其他: 视为裸相对路径, 拼接到origin根之后
//
// 未提供origin时, 片段原样返回
func PrefixURL(fragment, origin, protocol string) string {
	if fragment == "" || strings.HasPrefix(fragment, "http") {
		return fragment
	}

	if protocol == "" {
		protocol = DefaultProtocol
	}
	if strings.HasPrefix(fragment, "//") {
		return protocol + ":" + fragment
	}

	if origin == "" {
		return fragment
	}
	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		return fragment
	}
	root := base.Scheme + "://" + base.Host

	switch {
	case strings.HasPrefix(fragment, "/"):
		return root + fragment
	case strings.HasPrefix(fragment, "./"):
		dir := base.Path
		// 目录规整: 路径不以"/"结尾时去掉最后一段
		if !strings.HasSuffix(dir, "/") {
			if idx := strings.LastIndex(dir, "/"); idx >= 0 {
				dir = dir[:idx+1]
			} else {
				dir = "/"
			}
		}
		if dir == "" {
			dir = "/"
		}
		return root + dir + fragment[2:]
	default:
		return root + "/" + fragment
	}
}
