package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/ledproxy/internal/health"
	"github.com/taoyao-code/ledproxy/internal/metrics"
	"github.com/taoyao-code/ledproxy/internal/proxy"
)

// 单个方向超过该时长无数据时报告降级
const linkIdleThreshold = 5 * time.Minute

// NewHealthAggregator 按转发方向分别检查
func NewHealthAggregator(engine *proxy.Engine) *health.Aggregator {
	return health.NewAggregator(engine,
		health.NewDirectionChecker(engine, metrics.DirUpstream, linkIdleThreshold),
		health.NewDirectionChecker(engine, metrics.DirDownstream, linkIdleThreshold),
	)
}

// RegisterHealthRoutes 注册健康检查与运行统计路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator, engine *proxy.Engine) {
	health.RegisterHTTPRoutes(r, aggregator)
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.Stats())
	})
}
