package jvs

import "errors"

// 帧同步与转义字节
const (
	SyncByte   = 0xE0
	EscapeByte = 0xD0

	// MaxPayloadLen 长度字段仅1字节
	MaxPayloadLen = 0xFF
)

var (
	ErrPayloadTooLarge  = errors.New("jvs: payload too large")
	ErrChecksumMismatch = errors.New("jvs: checksum mismatch")
	ErrResync           = errors.New("jvs: sync byte inside frame")
	ErrUnexpectedByte   = errors.New("jvs: data after complete frame")
)

// Packet JVS 帧结构
// 格式：sync(1) + esc(dest) + esc(src) + esc(len) + esc(payload) + checksum(1)
type Packet struct {
	Dest     byte
	Src      byte
	Payload  []byte
	Checksum byte // 解码时为线上校验值，编码时重新计算
}

// Validate 检查载荷长度能否用1字节表示
func (p *Packet) Validate() error {
	if len(p.Payload) > MaxPayloadLen {
		return ErrPayloadTooLarge
	}
	return nil
}

// Clone 深拷贝，Reader 返回的包在下一帧开始时会被复用
func (p *Packet) Clone() *Packet {
	out := *p
	out.Payload = append([]byte(nil), p.Payload...)
	return &out
}

// AppendTo 将帧编码追加到 buf 并返回
// 载荷超过 MaxPayloadLen 时长度字段按低8位截断，调用方应先 Validate
func (p *Packet) AppendTo(buf []byte) []byte {
	buf = append(buf, SyncByte)
	var sum byte
	buf = appendEscaped(buf, &sum, p.Dest, p.Src, byte(len(p.Payload)))
	buf = appendEscaped(buf, &sum, p.Payload...)
	p.Checksum = sum
	return append(buf, sum)
}

// Encode 编码为完整的线上字节序列
func Encode(p *Packet) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p.AppendTo(make([]byte, 0, len(p.Payload)+6)), nil
}

// appendEscaped 逐字节累加校验并转义 sync/escape 字节。
// 0xD0 也必须转义：解码端把任何 0xD0 视为转义前缀，不转义则无法按原字节还原。
func appendEscaped(buf []byte, sum *byte, data ...byte) []byte {
	for _, b := range data {
		*sum += b
		if b == SyncByte || b == EscapeByte {
			buf = append(buf, EscapeByte, b-1)
			continue
		}
		buf = append(buf, b)
	}
	return buf
}
