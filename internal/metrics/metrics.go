package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 方向标签
const (
	DirUpstream   = "alls_to_led"
	DirDownstream = "led_to_alls"
)

// ProxyMetrics 代理业务指标
type ProxyMetrics struct {
	FramesTotal    *prometheus.CounterVec // labels: dir
	BytesTotal     *prometheus.CounterVec // labels: dir
	DropsTotal     *prometheus.CounterVec // labels: dir, reason
	CommandsTotal  *prometheus.CounterVec // labels: opcode
	ParseErrors    prometheus.Counter
	SpoofedReplies prometheus.Counter
	ColorSwaps     prometheus.Counter
	FetUpdates     *prometheus.CounterVec // labels: result=ok|error
	Running        prometheus.Gauge
}

// NewProxyMetrics 注册并返回代理指标
func NewProxyMetrics(reg prometheus.Registerer) *ProxyMetrics {
	m := &ProxyMetrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledproxy_frames_total",
			Help: "Complete JVS frames decoded per direction.",
		}, []string{"dir"}),
		BytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledproxy_bytes_read_total",
			Help: "Raw bytes read per direction.",
		}, []string{"dir"}),
		DropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledproxy_frame_drops_total",
			Help: "Frames or bytes dropped by the decoder.",
		}, []string{"dir", "reason"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledproxy_commands_total",
			Help: "Parsed ALLS commands by opcode.",
		}, []string{"opcode"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledproxy_parse_errors_total",
			Help: "ALLS payloads forwarded unparsed.",
		}),
		SpoofedReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledproxy_spoofed_replies_total",
			Help: "Replies synthesized by the proxy.",
		}),
		ColorSwaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledproxy_color_swaps_total",
			Help: "Color commands rewritten with green and blue swapped.",
		}),
		FetUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledproxy_fet_updates_total",
			Help: "SetFet commands applied to the PWM sink.",
		}, []string{"result"}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledproxy_running",
			Help: "1 while the proxy loops are running.",
		}),
	}
	reg.MustRegister(m.FramesTotal, m.BytesTotal, m.DropsTotal, m.CommandsTotal, m.ParseErrors,
		m.SpoofedReplies, m.ColorSwaps, m.FetUpdates, m.Running)
	return m
}
