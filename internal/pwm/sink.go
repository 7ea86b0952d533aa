package pwm

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
)

// Pin 单个 PWM 输出
type Pin interface {
	Export() error
	SetPeriod(ns uint32) error
	SetDutyCycle(ns uint32) error
	Enable(on bool) error
	Unexport() error
}

// PinFactory 按通道创建 Pin
type PinFactory func(Channel) (Pin, error)

// output 一个物理通道及其所属分区
type output struct {
	ch       Channel
	pin      Pin
	sections []Section
}

// Sink 把 SetFet 亮度写到 PWM 通道
// 多个分区映射到同一通道时取平均值
type Sink struct {
	mu      sync.Mutex
	period  uint32
	outputs []*output
	closed  bool
	log     *zap.Logger
}

// NewSink 根据配置创建并初始化全部通道（导出、设置周期、满占空、使能）
// factory 为 nil 时使用 sysfs
func NewSink(cfg cfgpkg.PWMConfig, factory PinFactory, log *zap.Logger) (*Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if factory == nil {
		factory = SysfsFactory(cfg.SysfsRoot)
	}
	if cfg.Period == 0 {
		return nil, errors.New("pwm: period must be positive")
	}

	s := &Sink{period: cfg.Period, log: log}
	byChannel := map[Channel]*output{}
	mapping := [sectionCount][]string{Chassis: cfg.Chassis, Ring: cfg.Ring, Side: cfg.Side}
	for sec, names := range mapping {
		for _, name := range names {
			ch, err := ParseChannel(name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", Section(sec), err)
			}
			out, ok := byChannel[ch]
			if !ok {
				out = &output{ch: ch}
				byChannel[ch] = out
				s.outputs = append(s.outputs, out)
			}
			out.sections = append(out.sections, Section(sec))
		}
	}

	for _, out := range s.outputs {
		pin, err := factory(out.ch)
		if err == nil {
			err = initPin(pin, cfg.Period)
		}
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("pwm %s: %w", out.ch, err)
		}
		out.pin = pin
		log.Info("pwm channel ready", zap.Stringer("channel", out.ch), zap.Strings("sections", sectionNames(out.sections)))
	}
	return s, nil
}

func initPin(pin Pin, period uint32) error {
	if err := pin.Export(); err != nil {
		return err
	}
	if err := pin.SetPeriod(period); err != nil {
		return err
	}
	// 启动时满亮
	if err := pin.SetDutyCycle(period); err != nil {
		return err
	}
	return pin.Enable(true)
}

// Channels 已配置的通道数
func (s *Sink) Channels() int { return len(s.outputs) }

// ApplyFet body 为 SetFet 命令体：chassis, ring, side
func (s *Sink) ApplyFet(body []byte) error {
	if len(body) < sectionCount {
		return fmt.Errorf("%w: got %d", ErrShortFet, len(body))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	var errs []error
	for _, out := range s.outputs {
		sum := 0
		for _, sec := range out.sections {
			sum += int(body[sec])
		}
		level := uint8(sum / len(out.sections))
		if err := out.pin.SetDutyCycle(DutyCycle(level, s.period)); err != nil {
			errs = append(errs, fmt.Errorf("pwm %s: %w", out.ch, err))
		}
	}
	return errors.Join(errs...)
}

// Close 关闭全部通道：占空清零、禁用、取消导出
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, out := range s.outputs {
		if out.pin == nil {
			continue
		}
		for _, err := range []error{out.pin.SetDutyCycle(0), out.pin.Enable(false), out.pin.Unexport()} {
			if err != nil {
				errs = append(errs, fmt.Errorf("pwm %s: %w", out.ch, err))
			}
		}
	}
	return errors.Join(errs...)
}

func sectionNames(secs []Section) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = s.String()
	}
	return out
}
