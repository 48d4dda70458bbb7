package fetch

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// defaultReserveMB 启动新浏览器进程前要求的最低可用内存
const defaultReserveMB = 512

// ResourceMonitor 浏览器启动前的内存余量检查
// 读取失败视为余量充足, 监控故障不阻塞抓取。
type ResourceMonitor struct {
	reserve uint64
}

// NewResourceMonitor 创建监控器, reserveMB<=0时使用默认预留值
func NewResourceMonitor(reserveMB int) *ResourceMonitor {
	if reserveMB <= 0 {
		reserveMB = defaultReserveMB
	}
	return &ResourceMonitor{reserve: uint64(reserveMB) * 1024 * 1024}
}

// CanLaunch 判断当前可用内存是否足以再启动一个浏览器进程
func (m *ResourceMonitor) CanLaunch() (bool, string) {
	stat, err := mem.VirtualMemory()
	if err != nil {
		return true, ""
	}
	if stat.Available < m.reserve {
		return false, fmt.Sprintf("可用内存%dMB低于预留值%dMB",
			stat.Available/1024/1024, m.reserve/1024/1024)
	}
	return true, ""
}
