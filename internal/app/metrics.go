package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taoyao-code/ledproxy/internal/metrics"
)

// NewMetrics 初始化注册表与代理指标
func NewMetrics() (*prometheus.Registry, *metrics.ProxyMetrics) {
	reg := metrics.NewRegistry()
	pm := metrics.NewProxyMetrics(reg)
	return reg, pm
}
