package health

import (
	"context"
	"time"
)

// Report /health 的响应体
type Report struct {
	Status    Status                 `json:"status"`
	SessionID string                 `json:"session_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Aggregator 汇总各方向检查结果
type Aggregator struct {
	src      StatsSource
	checkers []Checker
	now      func() time.Time
}

func NewAggregator(src StatsSource, checkers ...Checker) *Aggregator {
	return &Aggregator{src: src, checkers: checkers, now: time.Now}
}

// Report 依次执行检查，总体状态取最差的一项
// 检查只读内存快照，不需要并发
func (a *Aggregator) Report(ctx context.Context) Report {
	rep := Report{
		Status:    StatusHealthy,
		SessionID: a.src.Stats().SessionID,
		Timestamp: a.now(),
		Checks:    make(map[string]CheckResult, len(a.checkers)),
	}
	for _, c := range a.checkers {
		res := c.Check(ctx)
		rep.Checks[c.Name()] = res
		rep.Status = worse(rep.Status, res.Status)
	}
	return rep
}

// Ready 代理循环在运行即就绪，链路空闲不影响就绪
func (a *Aggregator) Ready() bool {
	return a.src.Stats().Running
}
