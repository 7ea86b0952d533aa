package health

import (
	"context"

	"github.com/taoyao-code/ledproxy/internal/proxy"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"   // 两个方向均在转发
	StatusDegraded  Status = "degraded"  // 代理运行中但链路长时间无数据
	StatusUnhealthy Status = "unhealthy" // 代理未运行
)

// worse 返回两者中更差的状态
func worse(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// CheckResult 单项检查结果
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Checker 健康检查项
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// StatsSource 代理运行快照来源，*proxy.Engine 实现该接口
type StatsSource interface {
	Stats() proxy.Stats
}

// ReadyFunc 以代理循环是否在运行作为就绪条件
// 链路在代理启动前打开，任一方向致命错误后 Running 变为 false
func ReadyFunc(src StatsSource) func() bool {
	return func() bool { return src.Stats().Running }
}
