package health

import (
	"context"
	"time"

	"github.com/taoyao-code/ledproxy/internal/metrics"
	"github.com/taoyao-code/ledproxy/internal/proxy"
)

// DirectionChecker 检查单个转发方向
type DirectionChecker struct {
	src     StatsSource
	dir     string
	idleFor time.Duration
	now     func() time.Time
}

// NewDirectionChecker 创建方向检查器
// dir 取 metrics.DirUpstream 或 metrics.DirDownstream；
// idleFor 为该方向无数据多久后判定降级，0 表示不检查空闲
func NewDirectionChecker(src StatsSource, dir string, idleFor time.Duration) *DirectionChecker {
	return &DirectionChecker{src: src, dir: dir, idleFor: idleFor, now: time.Now}
}

func (c *DirectionChecker) Name() string { return c.dir }

func (c *DirectionChecker) Check(ctx context.Context) CheckResult {
	s := c.src.Stats()
	d := s.Upstream
	if c.dir == metrics.DirDownstream {
		d = s.Downstream
	}

	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{
			"session_id": s.SessionID,
			"frames":     d.Frames,
			"bytes":      d.Bytes,
			"drops":      d.Drops,
		},
	}
	if !s.Running {
		res.Status = StatusUnhealthy
		res.Message = "proxy not running"
		return res
	}

	last := lastSeen(s, d)
	if !d.LastActivity.IsZero() {
		res.Details["last_activity"] = d.LastActivity
	}
	if c.idleFor > 0 && !last.IsZero() {
		idle := c.now().Sub(last)
		res.Details["idle"] = idle.String()
		if idle > c.idleFor {
			res.Status = StatusDegraded
			res.Message = "no traffic"
		}
	}
	return res
}

// lastSeen 方向最后一次收到数据的时间，从未收到时以启动时间为准
func lastSeen(s proxy.Stats, d proxy.DirStats) time.Time {
	if d.LastActivity.After(s.StartedAt) {
		return d.LastActivity
	}
	return s.StartedAt
}
