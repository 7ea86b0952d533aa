package pwm

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const DefaultSysfsRoot = "/sys/class/pwm"

// sysfsPin 通过 /sys/class/pwm 控制的通道
type sysfsPin struct {
	chipDir string
	pwmDir  string
	index   int
}

// SysfsFactory 返回基于 sysfs 的 PinFactory，root 为空时使用 /sys/class/pwm
func SysfsFactory(root string) PinFactory {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return func(ch Channel) (Pin, error) {
		chipDir := filepath.Join(root, "pwmchip"+strconv.Itoa(ch.Chip))
		if _, err := os.Stat(chipDir); err != nil {
			return nil, err
		}
		return &sysfsPin{
			chipDir: chipDir,
			pwmDir:  filepath.Join(chipDir, "pwm"+strconv.Itoa(ch.Index)),
			index:   ch.Index,
		}, nil
	}
}

// Export 已导出时跳过
func (p *sysfsPin) Export() error {
	if _, err := os.Stat(p.pwmDir); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return writeAttr(filepath.Join(p.chipDir, "export"), strconv.Itoa(p.index))
}

func (p *sysfsPin) Unexport() error {
	return writeAttr(filepath.Join(p.chipDir, "unexport"), strconv.Itoa(p.index))
}

func (p *sysfsPin) SetPeriod(ns uint32) error {
	return writeAttr(filepath.Join(p.pwmDir, "period"), strconv.FormatUint(uint64(ns), 10))
}

func (p *sysfsPin) SetDutyCycle(ns uint32) error {
	return writeAttr(filepath.Join(p.pwmDir, "duty_cycle"), strconv.FormatUint(uint64(ns), 10))
}

func (p *sysfsPin) Enable(on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return writeAttr(filepath.Join(p.pwmDir, "enable"), v)
}

func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
