// Package link 打开代理两端的字节流：本地串口或 ser2net 风格的 TCP 端口
package link

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.bug.st/serial"

	cfgpkg "github.com/taoyao-code/ledproxy/internal/config"
	"github.com/taoyao-code/ledproxy/internal/proxy"
)

const (
	schemeSerial = "serial://"
	schemeTCP    = "tcp://"

	defaultBaudRate    = 115200
	defaultReadTimeout = 100 * time.Millisecond
	dialTimeout        = 5 * time.Second
)

var ErrNoPath = errors.New("link: empty path")

// serialPort go.bug.st/serial.Port 中用到的部分
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// openSerial 测试中替换
var openSerial = func(name string, mode *serial.Mode) (serialPort, error) {
	return serial.Open(name, mode)
}

// Open 按路径打开链路，返回的端点读超时时返回可重试错误
func Open(cfg cfgpkg.LinkConfig) (io.ReadWriteCloser, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, ErrNoPath
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	if addr, ok := strings.CutPrefix(path, schemeTCP); ok {
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return &tcpLink{Conn: conn, timeout: timeout}, nil
	}

	name := strings.TrimPrefix(path, schemeSerial)
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = defaultBaudRate
	}
	port, err := openSerial(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout %s: %w", name, err)
	}
	return &serialLink{port: port}, nil
}

// serialLink 串口读超时返回 0, nil，这里转换为 proxy.ErrReadTimeout
type serialLink struct {
	port serialPort
}

func (s *serialLink) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, proxy.ErrReadTimeout
	}
	return n, err
}

func (s *serialLink) Write(p []byte) (int, error) { return s.port.Write(p) }

func (s *serialLink) Close() error { return s.port.Close() }

// tcpLink 每次读前设置截止时间，超时错误由代理重试
type tcpLink struct {
	net.Conn
	timeout time.Duration
}

func (t *tcpLink) Read(p []byte) (int, error) {
	if err := t.Conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return 0, err
	}
	return t.Conn.Read(p)
}
