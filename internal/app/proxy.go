package app

import (
	"io"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
	"github.com/taoyao-code/ledproxy/internal/link"
	"github.com/taoyao-code/ledproxy/internal/metrics"
	"github.com/taoyao-code/ledproxy/internal/proxy"
	"github.com/taoyao-code/ledproxy/internal/pwm"
)

// OpenLinks 打开 ALLS 与灯板两端链路，失败时关闭已打开的一端
func OpenLinks(cfg cfgpkg.LinksConfig, log *zap.Logger) (alls, board io.ReadWriteCloser, err error) {
	alls, err = link.Open(cfg.ALLS)
	if err != nil {
		return nil, nil, err
	}
	board, err = link.Open(cfg.LED)
	if err != nil {
		_ = alls.Close()
		return nil, nil, err
	}
	log.Info("links opened", zap.String("alls", cfg.ALLS.Path), zap.String("led", cfg.LED.Path))
	return alls, board, nil
}

// NewFetSink 启用 PWM 时创建输出，未启用返回 nil
func NewFetSink(cfg cfgpkg.PWMConfig, log *zap.Logger) (*pwm.Sink, error) {
	if !cfg.Enable {
		return nil, nil
	}
	return pwm.NewSink(cfg, nil, log.Named("pwm"))
}

// NewEngine 按配置创建代理
func NewEngine(alls, board proxy.Endpoint, cfg cfgpkg.ProxyConfig, pm *metrics.ProxyMetrics, sink *pwm.Sink, log *zap.Logger) *proxy.Engine {
	opts := proxy.Options{
		FixColorSwap: cfg.FixColorSwap,
		LogTraffic:   cfg.LogTraffic,
		Metrics:      pm,
	}
	// 避免把 nil *pwm.Sink 装进非 nil 接口
	if sink != nil {
		opts.Sink = sink
	}
	return proxy.New(alls, board, opts, log.Named("proxy"))
}
