package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/ledproxy/internal/protocol/led"
)

func TestBoardInfoBody(t *testing.T) {
	assert.Equal(t, []byte{'1', '5', '0', '7', '0', '-', '0', '4', 0xFF, 0x01}, BoardInfoBody())
}

func TestIntercept(t *testing.T) {
	t.Run("板卡信息查询直接应答", func(t *testing.T) {
		reply := Intercept(&led.Verbatim{Op: led.OpGetBoardInfo}, false)
		require.NotNil(t, reply)
		assert.Equal(t, &led.Verbatim{Op: led.OpGetBoardInfo, Body: BoardInfoBody()}, reply)
	})

	t.Run("开启修正时交换G/B", func(t *testing.T) {
		cmd := &led.SetLED{Index: 0, R: 10, G: 20, B: 30}
		assert.Nil(t, Intercept(cmd, true))
		assert.Equal(t, &led.SetLED{Index: 0, R: 10, G: 30, B: 20}, cmd)
	})

	t.Run("关闭修正时不改写", func(t *testing.T) {
		cmd := &led.SetMultiLEDFade{MultiLED: led.MultiLED{R: 1, G: 2, B: 3}}
		assert.Nil(t, Intercept(cmd, false))
		assert.Equal(t, uint8(2), cmd.G)
		assert.Equal(t, uint8(3), cmd.B)
	})

	t.Run("区间设色同样交换", func(t *testing.T) {
		cmd := &led.SetMultiLED{MultiLED: led.MultiLED{R: 1, G: 2, B: 3}}
		assert.Nil(t, Intercept(cmd, true))
		assert.Equal(t, uint8(3), cmd.G)
		assert.Equal(t, uint8(2), cmd.B)
	})

	t.Run("其他命令原样转发", func(t *testing.T) {
		for _, cmd := range []led.Command{
			&led.Reset{},
			&led.Commit{},
			&led.Verbatim{Op: led.OpSetFet, Body: []byte{1, 2, 3}},
			&led.Verbatim{Op: led.OpGetBoardStatus},
		} {
			assert.Nil(t, Intercept(cmd, true), cmd.Opcode().String())
		}
	})
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(ErrReadTimeout))
	assert.True(t, IsTimeout(timeoutErr{}))
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errUnplugged))
}
