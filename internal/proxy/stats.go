package proxy

import (
	"sync/atomic"
	"time"
)

// DirStats 单方向统计
type DirStats struct {
	Frames       uint64    `json:"frames"`
	Bytes        uint64    `json:"bytes"`
	Drops        uint64    `json:"drops"`
	LastActivity time.Time `json:"last_activity"`
}

// Stats 代理运行快照
type Stats struct {
	SessionID  string    `json:"session_id"`
	Running    bool      `json:"running"`
	StartedAt  time.Time `json:"started_at"`
	Upstream   DirStats  `json:"alls_to_led"`
	Downstream DirStats  `json:"led_to_alls"`
}

type dirCounters struct {
	frames atomic.Uint64
	bytes  atomic.Uint64
	drops  atomic.Uint64
	last   atomic.Int64 // unix nano
}

func (c *dirCounters) touch(n int) {
	c.bytes.Add(uint64(n))
	c.last.Store(time.Now().UnixNano())
}

func (c *dirCounters) snapshot() DirStats {
	s := DirStats{
		Frames: c.frames.Load(),
		Bytes:  c.bytes.Load(),
		Drops:  c.drops.Load(),
	}
	if ns := c.last.Load(); ns != 0 {
		s.LastActivity = time.Unix(0, ns)
	}
	return s
}
