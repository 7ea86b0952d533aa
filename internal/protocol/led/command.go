package led

// Command 解码后的 LED 命令，命令码由具体类型唯一决定
type Command interface {
	Opcode() Opcode
	appendBody(buf []byte) []byte
}

// ColorCommand 带 RGB 字段的设色命令
type ColorCommand interface {
	Command
	SwapGreenBlue()
}

// Reset 复位，无命令体
type Reset struct{}

func (*Reset) Opcode() Opcode               { return OpReset }
func (*Reset) appendBody(buf []byte) []byte { return buf }

// Commit 提交缓冲的灯效，无命令体
type Commit struct{}

func (*Commit) Opcode() Opcode               { return OpCommit }
func (*Commit) appendBody(buf []byte) []byte { return buf }

// SetLED 设置单颗 LED 颜色
type SetLED struct {
	Index uint8 `yaml:"index"`
	R     uint8 `yaml:"r"`
	G     uint8 `yaml:"g"`
	B     uint8 `yaml:"b"`
}

func (*SetLED) Opcode() Opcode { return OpSetLED }

func (c *SetLED) appendBody(buf []byte) []byte {
	return append(buf, c.Index, c.R, c.G, c.B)
}

// SwapGreenBlue 交换 G/B 通道（修正 RBG 接线的灯板）
func (c *SetLED) SwapGreenBlue() { c.G, c.B = c.B, c.G }

// MultiLED 区间设色字段，SetMultiLED 与 SetMultiLEDFade 共用
type MultiLED struct {
	Start uint8 `yaml:"start"`
	End   uint8 `yaml:"end"`
	Skip  uint8 `yaml:"skip"`
	R     uint8 `yaml:"r"`
	G     uint8 `yaml:"g"`
	B     uint8 `yaml:"b"`
	Speed uint8 `yaml:"speed"`
}

func (m *MultiLED) appendBody(buf []byte) []byte {
	return append(buf, m.Start, m.End, m.Skip, m.R, m.G, m.B, m.Speed)
}

func (m *MultiLED) SwapGreenBlue() { m.G, m.B = m.B, m.G }

// SetMultiLED 区间设色
type SetMultiLED struct {
	MultiLED `yaml:",inline"`
}

func (*SetMultiLED) Opcode() Opcode { return OpSetMultiLED }

// SetMultiLEDFade 区间渐变设色
type SetMultiLEDFade struct {
	MultiLED `yaml:",inline"`
}

func (*SetMultiLEDFade) Opcode() Opcode { return OpSetMultiLEDFade }

// Verbatim 不解析结构的命令（板卡信息、EEPROM、DC/FET 设置、超时、协议版本等），
// Body 为命令码之后的全部字节
type Verbatim struct {
	Op   Opcode `yaml:"-"`
	Body []byte `yaml:"body,flow"`
}

func (c *Verbatim) Opcode() Opcode { return c.Op }

func (c *Verbatim) appendBody(buf []byte) []byte { return append(buf, c.Body...) }
