package proxy

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taoyao-code/ledproxy/internal/metrics"
	"github.com/taoyao-code/ledproxy/internal/protocol/jvs"
	"github.com/taoyao-code/ledproxy/internal/protocol/led"
)

var ErrAlreadyRunning = errors.New("proxy: already running")

const defaultReadBufferSize = 256

// Options 代理选项
type Options struct {
	FixColorSwap bool                  // 交换设色命令的 G/B
	LogTraffic   bool                  // 逐帧记录两个方向的流量
	Metrics      *metrics.ProxyMetrics // 可为 nil
	Sink         FetSink               // SetFet 输出，可为 nil

	ReadBufferSize int
	// 解析失败日志限流
	ParseLogRate  float64
	ParseLogBurst int
}

// Engine ALLS 与灯板之间的双向转发
// ALLS→LED 方向经过拦截策略，LED→ALLS 方向原样转发；两个方向共享 ALLS 的写端
type Engine struct {
	alls  Endpoint
	led   Endpoint
	allsW *lockedWriter

	opts      Options
	log       *zap.Logger
	sessionID string
	parseLog  *logLimiter

	up      dirCounters
	down    dirCounters
	running atomic.Bool
	started atomic.Int64
}

// direction 单方向转发上下文，由所属 goroutine 独占
type direction struct {
	name     string
	src      io.Reader
	reader   *jvs.Reader
	counters *dirCounters
	handle   func(d *direction, p *jvs.Packet) error
	out      []byte // 编码缓冲，写返回后复用
}

// New 创建代理，log 为 nil 时不输出日志
func New(alls, board Endpoint, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = defaultReadBufferSize
	}
	id := uuid.NewString()
	return &Engine{
		alls:      alls,
		led:       board,
		allsW:     &lockedWriter{w: alls},
		opts:      opts,
		log:       log.With(zap.String("session", id)),
		sessionID: id,
		parseLog:  newLogLimiter(opts.ParseLogRate, opts.ParseLogBurst),
	}
}

// SessionID 本次代理会话标识
func (e *Engine) SessionID() string { return e.sessionID }

// Stats 返回运行快照，可并发调用
func (e *Engine) Stats() Stats {
	s := Stats{
		SessionID:  e.sessionID,
		Running:    e.running.Load(),
		Upstream:   e.up.snapshot(),
		Downstream: e.down.snapshot(),
	}
	if ns := e.started.Load(); ns != 0 {
		s.StartedAt = time.Unix(0, ns)
	}
	return s
}

// Run 启动两个方向的转发并阻塞。
// 任一方向出现不可恢复的读写错误时，关闭两端并返回该错误；ctx 取消视为正常停止，返回 nil。
// Engine 只能运行一次，返回后端点已关闭。
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	e.started.Store(time.Now().UnixNano())
	if m := e.opts.Metrics; m != nil {
		m.Running.Set(1)
	}
	defer func() {
		e.running.Store(false)
		if m := e.opts.Metrics; m != nil {
			m.Running.Set(0)
		}
	}()

	down := e.newDirection(metrics.DirDownstream, e.led, &e.down, e.handleLED)
	up := e.newDirection(metrics.DirUpstream, e.alls, &e.up, e.handleALLS)

	e.log.Info("proxy started",
		zap.Bool("fix_color_swap", e.opts.FixColorSwap),
		zap.Bool("log_traffic", e.opts.LogTraffic),
		zap.Bool("fet_sink", e.opts.Sink != nil))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.pump(gctx, down) })
	g.Go(func() error { return e.pump(gctx, up) })
	g.Go(func() error {
		// 唤醒阻塞在读上的另一方向
		<-gctx.Done()
		e.closeEndpoints()
		return nil
	})

	if err := g.Wait(); err != nil {
		e.log.Error("proxy stopped", zap.Error(err))
		return err
	}
	e.log.Info("proxy stopped")
	return nil
}

func (e *Engine) newDirection(name string, src io.Reader, c *dirCounters, h func(*direction, *jvs.Packet) error) *direction {
	r := jvs.NewReader(e.log.With(zap.String("dir", name)))
	r.OnDrop(func(reason error) {
		c.drops.Add(1)
		if m := e.opts.Metrics; m != nil {
			m.DropsTotal.WithLabelValues(name, dropReason(reason)).Inc()
		}
	})
	return &direction{
		name:     name,
		src:      src,
		reader:   r,
		counters: c,
		handle:   h,
		out:      make([]byte, 0, 2*jvs.MaxPayloadLen+6),
	}
}

// pump 读循环：超时重试，帧按到达顺序逐个处理
func (e *Engine) pump(ctx context.Context, d *direction) error {
	buf := make([]byte, e.opts.ReadBufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := d.src.Read(buf)
		if n > 0 {
			d.counters.touch(n)
			if m := e.opts.Metrics; m != nil {
				m.BytesTotal.WithLabelValues(d.name).Add(float64(n))
			}
			for _, b := range buf[:n] {
				p := d.reader.Feed(b)
				if p == nil {
					continue
				}
				d.counters.frames.Add(1)
				if m := e.opts.Metrics; m != nil {
					m.FramesTotal.WithLabelValues(d.name).Inc()
				}
				if herr := d.handle(d, p); herr != nil {
					if ctx.Err() != nil {
						return nil
					}
					return herr
				}
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if IsTimeout(err) {
				continue
			}
			return fmt.Errorf("%s: read: %w", d.name, err)
		}
	}
}

// handleLED 灯板应答原样重编码后写回 ALLS
func (e *Engine) handleLED(d *direction, p *jvs.Packet) error {
	return e.send(d, e.allsW, "alls", p)
}

// handleALLS 解析 ALLS 命令并应用拦截策略
func (e *Engine) handleALLS(d *direction, p *jvs.Packet) error {
	cmd, err := led.ParsePacket(p)
	if err != nil {
		e.parseFailed(p, err)
		return e.send(d, e.led, "led", p)
	}
	m := e.opts.Metrics
	if m != nil {
		m.CommandsTotal.WithLabelValues(cmd.Opcode().String()).Inc()
	}

	if reply := Intercept(cmd, e.opts.FixColorSwap); reply != nil {
		if m != nil {
			m.SpoofedReplies.Inc()
		}
		e.log.Debug("spoofed reply", zap.Stringer("opcode", reply.Opcode()))
		return e.send(d, e.allsW, "alls", led.ReplyTo(p, reply))
	}
	if _, ok := cmd.(led.ColorCommand); ok && e.opts.FixColorSwap && m != nil {
		m.ColorSwaps.Inc()
	}

	led.EncodeInto(cmd, p)
	if err := e.send(d, e.led, "led", p); err != nil {
		return err
	}
	if v, ok := cmd.(*led.Verbatim); ok && v.Op == led.OpSetFet {
		e.applyFet(v.Body)
	}
	return nil
}

// parseFailed 解析失败按原帧放行，日志限流
func (e *Engine) parseFailed(p *jvs.Packet, err error) {
	if m := e.opts.Metrics; m != nil {
		m.ParseErrors.Inc()
	}
	ok, suppressed := e.parseLog.Allow()
	if !ok {
		return
	}
	fields := []zap.Field{
		zap.Error(err),
		zap.Uint8("dest", p.Dest),
		zap.Uint8("src", p.Src),
		zap.String("payload", hex.EncodeToString(p.Payload)),
	}
	if suppressed > 0 {
		fields = append(fields, zap.Int64("suppressed", suppressed))
	}
	e.log.Warn("unparsed command forwarded", fields...)
}

func (e *Engine) applyFet(body []byte) {
	if e.opts.Sink == nil {
		return
	}
	result := "ok"
	if err := e.opts.Sink.ApplyFet(body); err != nil {
		result = "error"
		e.log.Warn("apply fet failed", zap.Error(err), zap.String("body", hex.EncodeToString(body)))
	}
	if m := e.opts.Metrics; m != nil {
		m.FetUpdates.WithLabelValues(result).Inc()
	}
}

// send 编码并写出一帧
func (e *Engine) send(d *direction, w io.Writer, target string, p *jvs.Packet) error {
	d.out = p.AppendTo(d.out[:0])
	if e.opts.LogTraffic {
		e.log.Info("packet",
			zap.String("dir", d.name),
			zap.String("to", target),
			zap.Uint8("dest", p.Dest),
			zap.Uint8("src", p.Src),
			zap.String("payload", hex.EncodeToString(p.Payload)))
	}
	if _, err := writeFull(w, d.out); err != nil {
		return fmt.Errorf("%s: write %s: %w", d.name, target, err)
	}
	return nil
}

func (e *Engine) closeEndpoints() {
	if err := e.alls.Close(); err != nil {
		e.log.Debug("close alls endpoint", zap.Error(err))
	}
	if err := e.led.Close(); err != nil {
		e.log.Debug("close led endpoint", zap.Error(err))
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, jvs.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, jvs.ErrResync):
		return "resync"
	case errors.Is(err, jvs.ErrUnexpectedByte):
		return "unexpected"
	}
	return "other"
}
