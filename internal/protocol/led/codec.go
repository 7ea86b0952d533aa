package led

import (
	"errors"
	"fmt"

	"github.com/taoyao-code/ledproxy/internal/protocol/jvs"
)

var (
	ErrEmptyPayload     = errors.New("led: empty payload")
	ErrUnknownOpcode    = errors.New("led: unknown opcode")
	ErrTruncatedPayload = errors.New("led: truncated payload")
)

// 应答头字段
const (
	replyStatusOK = 0x01
	replyReportOK = 0x01
)

// Parse 解析 JVS 载荷为命令
// 载荷首字节为命令码；固定布局命令体长度不足时返回 ErrTruncatedPayload，
// 多余字节忽略。Verbatim 命令体会被拷贝，不引用输入切片。
func Parse(payload []byte) (Command, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	op := Opcode(payload[0])
	body := payload[1:]

	info, ok := opcodeTable[op]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	if info.layout == layoutVerbatim {
		return &Verbatim{Op: op, Body: append([]byte(nil), body...)}, nil
	}
	if want := info.layout.bodyLen(); len(body) < want {
		return nil, truncated(op, len(body), want)
	}
	return info.build(body), nil
}

// ParsePacket 解析帧载荷
func ParsePacket(p *jvs.Packet) (Command, error) {
	return Parse(p.Payload)
}

func buildSetLED(b []byte) Command {
	return &SetLED{Index: b[0], R: b[1], G: b[2], B: b[3]}
}

func decodeMulti(b []byte) MultiLED {
	return MultiLED{
		Start: b[0],
		End:   b[1],
		Skip:  b[2],
		R:     b[3],
		G:     b[4],
		B:     b[5],
		Speed: b[6],
	}
}

func truncated(op Opcode, got, want int) error {
	return fmt.Errorf("%w: %s body %d bytes, want %d", ErrTruncatedPayload, op, got, want)
}

// Serialize 编码为请求载荷：opcode + body
func Serialize(cmd Command) []byte {
	return cmd.appendBody([]byte{byte(cmd.Opcode())})
}

// SerializeReply 编码为应答载荷：status + opcode + report + body
func SerializeReply(cmd Command) []byte {
	return cmd.appendBody([]byte{replyStatusOK, byte(cmd.Opcode()), replyReportOK})
}

// EncodeInto 用命令替换包载荷，地址不变
func EncodeInto(cmd Command, p *jvs.Packet) {
	p.Payload = Serialize(cmd)
}

// ReplyTo 根据请求包构造应答包：交换源/目的地址，载荷为应答编码
func ReplyTo(req *jvs.Packet, cmd Command) *jvs.Packet {
	return &jvs.Packet{
		Dest:    req.Src,
		Src:     req.Dest,
		Payload: SerializeReply(cmd),
	}
}
