package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHTTPRoutes 注册健康检查路由
//
//	GET /health/ready  代理运行中返回 200，否则 503
//	GET /health/live   进程存活即 200
//	GET /health        各方向详情；unhealthy 时 503，degraded 仍为 200
func RegisterHTTPRoutes(r *gin.Engine, agg *Aggregator) {
	r.GET("/health/ready", func(c *gin.Context) {
		if !agg.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusUnhealthy, "ready": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ready": true})
	})

	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	r.GET("/health", func(c *gin.Context) {
		rep := agg.Report(c.Request.Context())
		code := http.StatusOK
		if rep.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, rep)
	})
}
