package jvs

import (
	"fmt"

	"go.uber.org/zap"
)

// State 解码器状态
type State uint8

const (
	stateAwaitSync State = iota // 初始：首个 sync 之前的字节全部丢弃
	StateAwaitDest
	StateAwaitSource
	StateAwaitLength
	StateAwaitPayload
	StateAwaitChecksum
	StateReady
)

func (s State) String() string {
	switch s {
	case stateAwaitSync:
		return "await_sync"
	case StateAwaitDest:
		return "await_dest"
	case StateAwaitSource:
		return "await_source"
	case StateAwaitLength:
		return "await_length"
	case StateAwaitPayload:
		return "await_payload"
	case StateAwaitChecksum:
		return "await_checksum"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DropFunc 丢帧回调（用于指标上报），reason 为 ErrChecksumMismatch/ErrResync/ErrUnexpectedByte
type DropFunc func(reason error)

// Reader 逐字节的流式解码器，每个方向独占一个实例
type Reader struct {
	state   State
	escaped bool // 上一个字节是 escape，本字节需 +1
	length  int
	sum     byte
	packet  Packet

	log    *zap.Logger
	onDrop DropFunc
}

// NewReader 创建解码器，log 为 nil 时不输出日志
func NewReader(log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{log: log}
}

// OnDrop 安装丢帧回调
func (r *Reader) OnDrop(fn DropFunc) { r.onDrop = fn }

// State 返回当前状态
func (r *Reader) State() State { return r.state }

func (r *Reader) reset() {
	r.state = StateAwaitDest
	r.escaped = false
	r.length = 0
	r.sum = 0
	r.packet.Dest, r.packet.Src, r.packet.Checksum = 0, 0, 0
	r.packet.Payload = r.packet.Payload[:0]
}

func (r *Reader) drop(reason error) {
	if r.onDrop != nil {
		r.onDrop(reason)
	}
}

// inFrame 是否处于一帧的中间
func (r *Reader) inFrame() bool {
	return r.state > StateAwaitDest && r.state < StateReady
}

// Feed 输入一个线上字节；帧完整且校验通过时返回解码结果。
// 返回的包归 Reader 所有，下一个 sync 字节到来前有效；需要长期持有时调用 Clone。
func (r *Reader) Feed(b byte) *Packet {
	if b == SyncByte {
		if r.inFrame() {
			r.drop(ErrResync)
		}
		r.reset()
		return nil
	}

	switch r.state {
	case stateAwaitSync:
		return nil
	case StateReady:
		r.log.Warn("data in ready state", zap.String("byte", hexByte(b)))
		r.drop(ErrUnexpectedByte)
		return nil
	case StateAwaitChecksum:
		// 校验字节不转义
		if b != r.sum {
			r.log.Error("bad checksum",
				zap.String("want", hexByte(r.sum)),
				zap.String("got", hexByte(b)),
				zap.Uint8("dest", r.packet.Dest),
				zap.Uint8("src", r.packet.Src),
				zap.Int("len", r.length))
			r.drop(ErrChecksumMismatch)
			r.reset()
			return nil
		}
		r.packet.Checksum = b
		r.state = StateReady
		return &r.packet
	}

	if b == EscapeByte && !r.escaped {
		r.escaped = true
		return nil
	}
	if r.escaped {
		b++
		r.escaped = false
	}
	r.sum += b

	switch r.state {
	case StateAwaitDest:
		r.packet.Dest = b
		r.state = StateAwaitSource
	case StateAwaitSource:
		r.packet.Src = b
		r.state = StateAwaitLength
	case StateAwaitLength:
		r.length = int(b)
		r.state = StateAwaitPayload
		if r.length == 0 {
			r.state = StateAwaitChecksum
		}
	case StateAwaitPayload:
		r.packet.Payload = append(r.packet.Payload, b)
		if len(r.packet.Payload) == r.length {
			r.state = StateAwaitChecksum
		}
	}
	return nil
}

// FeedAll 整段喂入，fn 对每个完整帧按到达顺序调用一次
func (r *Reader) FeedAll(p []byte, fn func(*Packet)) {
	for _, b := range p {
		if pkt := r.Feed(b); pkt != nil {
			fn(pkt)
		}
	}
}

func hexByte(b byte) string { return fmt.Sprintf("0x%02X", b) }
