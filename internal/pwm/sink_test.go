package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
)

// fakePin 记录调用序列
type fakePin struct {
	calls []string
	duty  uint32
	fail  error
}

func (p *fakePin) record(s string) error {
	p.calls = append(p.calls, s)
	return p.fail
}

func (p *fakePin) Export() error             { return p.record("export") }
func (p *fakePin) Unexport() error           { return p.record("unexport") }
func (p *fakePin) SetPeriod(ns uint32) error { return p.record(fmt.Sprintf("period=%d", ns)) }
func (p *fakePin) Enable(on bool) error      { return p.record(fmt.Sprintf("enable=%t", on)) }

func (p *fakePin) SetDutyCycle(ns uint32) error {
	p.duty = ns
	return p.record(fmt.Sprintf("duty=%d", ns))
}

type fakeBoard map[Channel]*fakePin

func (b fakeBoard) factory(ch Channel) (Pin, error) {
	p := &fakePin{}
	b[ch] = p
	return p, nil
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"0-1", Channel{Chip: 0, Index: 1}, false},
		{" 2-10 ", Channel{Chip: 2, Index: 10}, false},
		{"3", Channel{}, true},
		{"a-1", Channel{}, true},
		{"1--1", Channel{}, true},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrBadChannel, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDutyCycle(t *testing.T) {
	assert.Equal(t, uint32(0), DutyCycle(0, 50000))
	assert.Equal(t, uint32(25000), DutyCycle(128, 50000))
	assert.Equal(t, uint32(49804), DutyCycle(255, 50000))
}

func TestSink_InitApplyClose(t *testing.T) {
	board := fakeBoard{}
	cfg := cfgpkg.PWMConfig{
		Period:  50000,
		Chassis: []string{"0-0"},
		Ring:    []string{"0-1", "0-2"},
		Side:    []string{"0-2"},
	}
	s, err := NewSink(cfg, board.factory, nil)
	require.NoError(t, err)
	require.Equal(t, 3, s.Channels())

	chassis := board[Channel{0, 0}]
	assert.Equal(t, []string{"export", "period=50000", "duty=50000", "enable=true"}, chassis.calls)

	require.NoError(t, s.ApplyFet([]byte{0x80, 0x40, 0xC0}))
	assert.Equal(t, DutyCycle(0x80, 50000), board[Channel{0, 0}].duty)
	assert.Equal(t, DutyCycle(0x40, 50000), board[Channel{0, 1}].duty)
	// 灯环与侧灯共用 0-2，取平均
	assert.Equal(t, DutyCycle(0x80, 50000), board[Channel{0, 2}].duty)

	require.NoError(t, s.Close())
	calls := chassis.calls
	assert.Equal(t, []string{"duty=0", "enable=false", "unexport"}, calls[len(calls)-3:])

	// 关闭后忽略
	assert.NoError(t, s.ApplyFet([]byte{1, 2, 3}))
	assert.NoError(t, s.Close())
}

func TestSink_ShortFetBody(t *testing.T) {
	s, err := NewSink(cfgpkg.PWMConfig{Period: 1000}, fakeBoard{}.factory, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.ApplyFet([]byte{1, 2}), ErrShortFet)
}

func TestNewSink_Errors(t *testing.T) {
	_, err := NewSink(cfgpkg.PWMConfig{Period: 1000, Ring: []string{"bogus"}}, fakeBoard{}.factory, nil)
	assert.ErrorIs(t, err, ErrBadChannel)

	_, err = NewSink(cfgpkg.PWMConfig{}, fakeBoard{}.factory, nil)
	assert.Error(t, err)

	errExport := errors.New("export denied")
	failing := func(Channel) (Pin, error) { return &fakePin{fail: errExport}, nil }
	_, err = NewSink(cfgpkg.PWMConfig{Period: 1000, Side: []string{"0-0"}}, failing, nil)
	assert.ErrorIs(t, err, errExport)
}

func TestSysfsPin(t *testing.T) {
	root := t.TempDir()
	pwmDir := filepath.Join(root, "pwmchip0", "pwm1")
	require.NoError(t, os.MkdirAll(pwmDir, 0o755))

	s, err := NewSink(cfgpkg.PWMConfig{SysfsRoot: root, Period: 50000, Ring: []string{"0-1"}}, nil, nil)
	require.NoError(t, err)

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(pwmDir, name))
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "50000", read("period"))
	assert.Equal(t, "50000", read("duty_cycle"))
	assert.Equal(t, "1", read("enable"))

	require.NoError(t, s.ApplyFet([]byte{0, 128, 0}))
	assert.Equal(t, "25000", read("duty_cycle"))

	require.NoError(t, s.Close())
	assert.Equal(t, "0", read("enable"))
	b, err := os.ReadFile(filepath.Join(root, "pwmchip0", "unexport"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

func TestSysfsFactory_MissingChip(t *testing.T) {
	_, err := SysfsFactory(t.TempDir())(Channel{Chip: 9, Index: 0})
	assert.Error(t, err)
}
