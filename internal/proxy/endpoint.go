package proxy

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
)

// ErrReadTimeout 读超时（无数据），链路适配器用它表示可重试的空读
var ErrReadTimeout = errors.New("proxy: read timeout")

// Endpoint 双工字节流。停止代理时两端都会被关闭，Close 必须唤醒阻塞中的 Read
type Endpoint interface {
	io.ReadWriteCloser
}

// IsTimeout 判断读错误是否为可重试的超时
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrReadTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// lockedWriter 串行化多个方向对同一端点的写
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return writeFull(l.w, p)
}

// writeFull 写完整帧，短写视为错误
func writeFull(w io.Writer, p []byte) (int, error) {
	n, err := w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

