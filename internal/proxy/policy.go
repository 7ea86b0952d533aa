package proxy

import "github.com/taoyao-code/ledproxy/internal/protocol/led"

// BoardIdentity 伪装的灯板型号
const BoardIdentity = "15070-04"

// boardInfoTrailer 型号之后的两个固定字节
var boardInfoTrailer = []byte{0xFF, 0x01}

// BoardInfoBody 伪装的板卡信息应答体
func BoardInfoBody() []byte {
	body := make([]byte, 0, len(BoardIdentity)+len(boardInfoTrailer))
	body = append(body, BoardIdentity...)
	return append(body, boardInfoTrailer...)
}

// Intercept 拦截策略：返回非 nil 时直接应答 ALLS，不转发灯板；
// 返回 nil 时转发 cmd（fixColorSwap 开启时设色命令的 G/B 已原地交换）
func Intercept(cmd led.Command, fixColorSwap bool) led.Command {
	switch c := cmd.(type) {
	case *led.Verbatim:
		if c.Op == led.OpGetBoardInfo {
			return &led.Verbatim{Op: led.OpGetBoardInfo, Body: BoardInfoBody()}
		}
	case led.ColorCommand:
		if fixColorSwap {
			c.SwapGreenBlue()
		}
	}
	return nil
}

// FetSink SetFet 亮度输出（PWM 等），body 为命令码之后的字节
type FetSink interface {
	ApplyFet(body []byte) error
}
