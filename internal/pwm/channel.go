package pwm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadChannel = errors.New("pwm: bad channel")
	ErrShortFet   = errors.New("pwm: fet body shorter than 3 bytes")
)

// Section FET 分区，顺序与 SetFet 命令体一致：FET0 机身，FET1 灯环，FET2 侧灯
type Section int

const (
	Chassis Section = iota
	Ring
	Side

	sectionCount = 3
)

func (s Section) String() string {
	switch s {
	case Chassis:
		return "chassis"
	case Ring:
		return "ring"
	case Side:
		return "side"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Channel sysfs PWM 通道
type Channel struct {
	Chip  int
	Index int
}

func (c Channel) String() string { return fmt.Sprintf("%d-%d", c.Chip, c.Index) }

// ParseChannel 解析 "<pwmchip>-<pwm>"，如 "0-1" 表示 pwmchip0/pwm1
func ParseChannel(s string) (Channel, error) {
	chip, idx, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Channel{}, fmt.Errorf("%w: %q", ErrBadChannel, s)
	}
	c, err1 := strconv.Atoi(chip)
	i, err2 := strconv.Atoi(idx)
	if err1 != nil || err2 != nil || c < 0 || i < 0 {
		return Channel{}, fmt.Errorf("%w: %q", ErrBadChannel, s)
	}
	return Channel{Chip: c, Index: i}, nil
}

// DutyCycle 亮度 0-255 映射到占空时间（纳秒）
func DutyCycle(level uint8, period uint32) uint32 {
	return uint32(uint64(period) * uint64(level) / 256)
}
