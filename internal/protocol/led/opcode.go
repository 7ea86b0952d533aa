package led

import "fmt"

// Opcode LED 板命令码（载荷首字节）
type Opcode byte

const (
	OpReset              Opcode = 0x10
	OpSetTimeout         Opcode = 0x11
	OpSetLED             Opcode = 0x31
	OpSetMultiLED        Opcode = 0x32
	OpSetMultiLEDFade    Opcode = 0x33
	OpSetFet             Opcode = 0x39
	OpUpdateDc           Opcode = 0x3B
	OpCommit             Opcode = 0x3C
	OpSetDc              Opcode = 0x3F
	OpEepromWrite        Opcode = 0x7B
	OpEepromRead         Opcode = 0x7C
	OpGetBoardInfo       Opcode = 0xF0
	OpGetBoardStatus     Opcode = 0xF1
	OpGetProtocolVersion Opcode = 0xF3
)

// layout 命令体布局
type layout uint8

const (
	layoutNone     layout = iota // 无命令体
	layoutSingle                 // index r g b
	layoutMulti                  // start end skip r g b speed
	layoutVerbatim               // 原样透传
)

// bodyLen 固定布局的最小命令体长度，透传与无体布局为 0
func (l layout) bodyLen() int {
	switch l {
	case layoutSingle:
		return 4
	case layoutMulti:
		return 7
	}
	return 0
}

type opcodeInfo struct {
	name   string
	layout layout
	// build 构造固定布局命令，body 长度已校验；透传命令为 nil
	build func(body []byte) Command
}

// opcodeTable 编解码共用的命令表
var opcodeTable = map[Opcode]opcodeInfo{
	OpReset:              {"Reset", layoutNone, func([]byte) Command { return &Reset{} }},
	OpSetTimeout:         {"SetTimeout", layoutVerbatim, nil},
	OpSetLED:             {"SetLED", layoutSingle, buildSetLED},
	OpSetMultiLED:        {"SetMultiLED", layoutMulti, func(b []byte) Command { return &SetMultiLED{MultiLED: decodeMulti(b)} }},
	OpSetMultiLEDFade:    {"SetMultiLEDFade", layoutMulti, func(b []byte) Command { return &SetMultiLEDFade{MultiLED: decodeMulti(b)} }},
	OpSetFet:             {"SetFet", layoutVerbatim, nil},
	OpUpdateDc:           {"UpdateDc", layoutVerbatim, nil},
	OpCommit:             {"Commit", layoutNone, func([]byte) Command { return &Commit{} }},
	OpSetDc:              {"SetDc", layoutVerbatim, nil},
	OpEepromWrite:        {"EepromWrite", layoutVerbatim, nil},
	OpEepromRead:         {"EepromRead", layoutVerbatim, nil},
	OpGetBoardInfo:       {"GetBoardInfo", layoutVerbatim, nil},
	OpGetBoardStatus:     {"GetBoardStatus", layoutVerbatim, nil},
	OpGetProtocolVersion: {"GetProtocolVersion", layoutVerbatim, nil},
}

// Known 是否为已识别的命令码
func (o Opcode) Known() bool {
	_, ok := opcodeTable[o]
	return ok
}

func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.name
	}
	return fmt.Sprintf("Unknown(0x%02X)", byte(o))
}

// Opcodes 返回全部已识别命令码（按数值升序）
func Opcodes() []Opcode {
	out := make([]Opcode, 0, len(opcodeTable))
	for op := Opcode(0); ; op++ {
		if op.Known() {
			out = append(out, op)
		}
		if op == 0xFF {
			return out
		}
	}
}
