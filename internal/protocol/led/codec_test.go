package led

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/ledproxy/internal/protocol/jvs"
)

func TestParse_Variants(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    Command
	}{
		{"复位", []byte{0x10}, &Reset{}},
		{"提交", []byte{0x3C}, &Commit{}},
		{"单灯设色", []byte{0x31, 5, 10, 20, 30}, &SetLED{Index: 5, R: 10, G: 20, B: 30}},
		{
			"区间设色",
			[]byte{0x32, 0, 9, 1, 0xFF, 0x80, 0x00, 0},
			&SetMultiLED{MultiLED{Start: 0, End: 9, Skip: 1, R: 0xFF, G: 0x80, B: 0x00, Speed: 0}},
		},
		{
			"区间渐变",
			[]byte{0x33, 2, 4, 0, 1, 2, 3, 40},
			&SetMultiLEDFade{MultiLED{Start: 2, End: 4, Skip: 0, R: 1, G: 2, B: 3, Speed: 40}},
		},
		{"查询板卡信息", []byte{0xF0}, &Verbatim{Op: OpGetBoardInfo}},
		{"FET设置", []byte{0x39, 0x10, 0x20, 0x30}, &Verbatim{Op: OpSetFet, Body: []byte{0x10, 0x20, 0x30}}},
		{"EEPROM写入", []byte{0x7B, 0x01, 0x02}, &Verbatim{Op: OpEepromWrite, Body: []byte{0x01, 0x02}}},
		{"超时设置", []byte{0x11, 0x00, 0x0A}, &Verbatim{Op: OpSetTimeout, Body: []byte{0x00, 0x0A}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.payload, Serialize(got))
		})
	}
}

func TestParse_RoundTripAllOpcodes(t *testing.T) {
	for _, op := range Opcodes() {
		payload := []byte{byte(op), 1, 2, 3, 4, 5, 6, 7}
		switch opcodeTable[op].layout {
		case layoutNone:
			payload = payload[:1]
		case layoutSingle:
			payload = payload[:1+layoutSingle.bodyLen()]
		}
		cmd, err := Parse(payload)
		require.NoError(t, err, op.String())
		assert.Equal(t, op, cmd.Opcode())
		assert.Equal(t, payload, Serialize(cmd), op.String())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{"空载荷", nil, ErrEmptyPayload},
		{"未知命令码", []byte{0x99, 0x01}, ErrUnknownOpcode},
		{"单灯设色缺字节", []byte{0x31, 1, 2}, ErrTruncatedPayload},
		{"区间设色缺字节", []byte{0x32, 1, 2, 3, 4, 5, 6}, ErrTruncatedPayload},
		{"渐变仅命令码", []byte{0x33}, ErrTruncatedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.payload)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, cmd)
		})
	}
}

func TestParse_LengthFollowsOpcodeTable(t *testing.T) {
	for _, op := range Opcodes() {
		info := opcodeTable[op]
		if info.layout == layoutVerbatim {
			assert.Nil(t, info.build, op.String())
			continue
		}
		require.NotNil(t, info.build, op.String())

		body := make([]byte, info.layout.bodyLen())
		cmd, err := Parse(append([]byte{byte(op)}, body...))
		require.NoError(t, err, op.String())
		assert.Equal(t, op, cmd.Opcode())

		if n := len(body); n > 0 {
			_, err = Parse(append([]byte{byte(op)}, body[:n-1]...))
			assert.ErrorIs(t, err, ErrTruncatedPayload, op.String())
		}
	}
}

func TestParse_UnknownOpcodeMentionsByte(t *testing.T) {
	_, err := Parse([]byte{0x99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x99")
}

func TestParse_ResetIgnoresTrailingBytes(t *testing.T) {
	cmd, err := Parse([]byte{0x10, 0xAA, 0xBB})
	require.NoError(t, err)
	assert.Equal(t, &Reset{}, cmd)
	assert.Equal(t, []byte{0x10}, Serialize(cmd))
}

func TestParse_VerbatimCopiesBody(t *testing.T) {
	payload := []byte{0x7C, 0x01, 0x02}
	cmd, err := Parse(payload)
	require.NoError(t, err)

	payload[1] = 0xFF
	assert.Equal(t, []byte{0x01, 0x02}, cmd.(*Verbatim).Body)
}

func TestSerializeReply(t *testing.T) {
	cmd := &Verbatim{Op: OpGetBoardInfo, Body: []byte("15070-04")}
	want := append([]byte{0x01, 0xF0, 0x01}, []byte("15070-04")...)
	assert.Equal(t, want, SerializeReply(cmd))

	assert.Equal(t, []byte{0x01, 0x10, 0x01}, SerializeReply(&Reset{}))
}

func TestReplyTo_SwapsAddresses(t *testing.T) {
	req := &jvs.Packet{Dest: 0x01, Src: 0x02, Payload: []byte{0xF0}}
	reply := ReplyTo(req, &Verbatim{Op: OpGetBoardInfo, Body: []byte{0xFF}})

	assert.Equal(t, byte(0x02), reply.Dest)
	assert.Equal(t, byte(0x01), reply.Src)
	assert.Equal(t, []byte{0x01, 0xF0, 0x01, 0xFF}, reply.Payload)
}

func TestEncodeInto_KeepsAddresses(t *testing.T) {
	p := &jvs.Packet{Dest: 0x01, Src: 0x02, Payload: []byte{0x31, 0, 10, 20, 30}}
	EncodeInto(&SetLED{Index: 0, R: 10, G: 30, B: 20}, p)

	assert.Equal(t, byte(0x01), p.Dest)
	assert.Equal(t, byte(0x02), p.Src)
	assert.Equal(t, []byte{0x31, 0, 10, 30, 20}, p.Payload)
}

func TestSwapGreenBlue(t *testing.T) {
	tests := []struct {
		name string
		cmd  ColorCommand
		want ColorCommand
	}{
		{"单灯", &SetLED{Index: 0, R: 10, G: 20, B: 30}, &SetLED{Index: 0, R: 10, G: 30, B: 20}},
		{
			"区间",
			&SetMultiLED{MultiLED{Start: 1, End: 2, R: 1, G: 2, B: 3}},
			&SetMultiLED{MultiLED{Start: 1, End: 2, R: 1, G: 3, B: 2}},
		},
		{
			"渐变",
			&SetMultiLEDFade{MultiLED{R: 7, G: 8, B: 9, Speed: 5}},
			&SetMultiLEDFade{MultiLED{R: 7, G: 9, B: 8, Speed: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.SwapGreenBlue()
			assert.Equal(t, tt.want, tt.cmd)
		})
	}
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "GetBoardInfo", OpGetBoardInfo.String())
	assert.Equal(t, "SetMultiLEDFade", OpSetMultiLEDFade.String())
	assert.Equal(t, "Unknown(0x99)", Opcode(0x99).String())
	assert.Len(t, Opcodes(), 14)
}

// 抓包流中的每一帧解析后重新编码，整段字节应完全一致
func TestCaptureStreamReencodesIdentically(t *testing.T) {
	payloads := [][]byte{
		{0x10},
		{0xF0},
		{0x31, 0x00, 0xE0, 0xD0, 0x10},
		{0x32, 0x00, 0x3F, 0x01, 0xFF, 0x00, 0x80, 0x00},
		{0x33, 0x00, 0x3F, 0x00, 0x10, 0x20, 0x30, 0x40},
		{0x39, 0x80, 0x40, 0x20},
		{0x3C},
	}

	var stream []byte
	for _, pl := range payloads {
		p := &jvs.Packet{Dest: 0x01, Src: 0x02, Payload: pl}
		stream = p.AppendTo(stream)
	}

	var out []byte
	r := jvs.NewReader(nil)
	r.FeedAll(stream, func(p *jvs.Packet) {
		cmd, err := ParsePacket(p)
		require.NoError(t, err)
		rebuilt := &jvs.Packet{Dest: p.Dest, Src: p.Src}
		EncodeInto(cmd, rebuilt)
		out = rebuilt.AppendTo(out)
	})

	assert.True(t, bytes.Equal(stream, out))
}
