// Package replay 离线解析抓包文件：逐帧解码、解析命令并重新编码，校验编解码是否无损
package replay

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/ledproxy/internal/protocol/jvs"
	"github.com/taoyao-code/ledproxy/internal/protocol/led"
)

// Record 单帧解析结果
type Record struct {
	Index   int         `yaml:"index"`
	Dest    uint8       `yaml:"dest"`
	Src     uint8       `yaml:"src"`
	Length  int         `yaml:"len"`
	Opcode  string      `yaml:"opcode,omitempty"`
	Command led.Command `yaml:"command,omitempty"`
	Error   string      `yaml:"error,omitempty"`
}

// Result 回放汇总
type Result struct {
	Frames    int      `yaml:"frames"`
	Parsed    int      `yaml:"parsed"`
	Failed    int      `yaml:"failed"`
	Drops     int      `yaml:"drops"`
	Identical bool     `yaml:"identical"`
	Records   []Record `yaml:"records"`

	Input  []byte `yaml:"-"`
	Output []byte `yaml:"-"`
}

// Replay 读取整个抓包流。解析失败的帧记录错误并从输出中丢弃；
// Identical 表示重新编码的字节流与输入完全一致
func Replay(r io.Reader, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	in, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}

	res := &Result{Input: in}
	dec := jvs.NewReader(log)
	dec.OnDrop(func(error) { res.Drops++ })

	dec.FeedAll(in, func(p *jvs.Packet) {
		rec := Record{Index: res.Frames, Dest: p.Dest, Src: p.Src, Length: len(p.Payload)}
		res.Frames++
		log.Debug("packet",
			zap.Uint8("src", p.Src),
			zap.Uint8("dest", p.Dest),
			zap.Int("len", len(p.Payload)))

		cmd, err := led.ParsePacket(p)
		if err != nil {
			log.Error("couldn't parse", zap.Int("index", rec.Index), zap.Error(err))
			rec.Error = err.Error()
			res.Failed++
			res.Records = append(res.Records, rec)
			return
		}
		res.Parsed++
		rec.Opcode = cmd.Opcode().String()
		rec.Command = cmd
		res.Records = append(res.Records, rec)
		log.Debug("led command", zap.String("opcode", rec.Opcode), zap.Any("command", cmd))

		out := &jvs.Packet{Dest: p.Dest, Src: p.Src}
		led.EncodeInto(cmd, out)
		res.Output = out.AppendTo(res.Output)
	})

	res.Identical = bytes.Equal(in, res.Output)
	return res, nil
}

// WriteYAML 以 YAML 输出回放结果
func WriteYAML(w io.Writer, res *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
