package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/taoyao-code/ledproxy/internal/app"
	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
	"github.com/taoyao-code/ledproxy/internal/health"
	"github.com/taoyao-code/ledproxy/internal/httpserver"
	"github.com/taoyao-code/ledproxy/internal/metrics"
	"github.com/taoyao-code/ledproxy/internal/proxy"
)

// Run 打开两端链路并运行代理，直到 ctx 取消或链路出现不可恢复错误
func Run(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) error {
	alls, board, err := app.OpenLinks(cfg.Link, log)
	if err != nil {
		log.Error("open links failed", zap.Error(err))
		return err
	}
	return RunWith(ctx, cfg, alls, board, log)
}

// RunWith 在已打开的端点上运行代理，返回时端点已关闭
func RunWith(ctx context.Context, cfg *cfgpkg.Config, alls, board proxy.Endpoint, log *zap.Logger) error {
	log.Info("starting ledproxy", zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	// ========== 阶段1: 基础组件 ==========
	reg, pm := app.NewMetrics()

	// ========== 阶段2: PWM 输出（可选）==========
	sink, err := app.NewFetSink(cfg.PWM, log)
	if err != nil {
		log.Error("pwm initialization failed", zap.Error(err))
		closeQuietly(alls, board)
		return err
	}
	if sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				log.Warn("pwm close failed", zap.Error(err))
			}
		}()
		log.Info("pwm sink ready", zap.Int("channels", sink.Channels()))
	}

	engine := app.NewEngine(alls, board, cfg.Proxy, pm, sink, log)

	// ========== 阶段3: HTTP 服务（可选，非阻塞）==========
	if cfg.HTTP.Enable {
		httpSrv := startHTTP(cfg, reg, engine, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(sctx)
			log.Info("http server stopped")
		}()
	}

	// ========== 阶段4: 代理主循环（阻塞）==========
	if err := engine.Run(ctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func startHTTP(cfg *cfgpkg.Config, reg *prometheus.Registry, engine *proxy.Engine, log *zap.Logger) *httpserver.Server {
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}
	httpSrv := app.NewHTTPServer(cfg.HTTP, cfg.Metrics.Path, metricsHandler, health.ReadyFunc(engine))

	healthAgg := app.NewHealthAggregator(engine)
	httpSrv.Register(func(r *gin.Engine) {
		app.RegisterHealthRoutes(r, healthAgg, engine)
	})

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))
	return httpSrv
}

func closeQuietly(eps ...proxy.Endpoint) {
	for _, ep := range eps {
		_ = ep.Close()
	}
}
