package fwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const __DefaultCopyBufferSize = 32 * 1024

// SafeWriter 文件写入器: 内容先写入临时文件, Commit时原子地替换目标文件.
// A file lock keeps two writers from producing the same target at once.
type SafeWriter struct {
	lock      *outputLock
	writer    *os.File
	fn        string
	tmpSuffix string
	written   int64
}

// NewSafeWriter 新建SafeWriter对象.
func NewSafeWriter(fn string) (*SafeWriter, error) {
	if err := os.MkdirAll(filepath.Dir(fn), 0750); err != nil {
		return nil, err
	}

	lock := newOutputLock(fn)
	if err := lock.acquire(); err != nil {
		return nil, err
	}

	tmpSuffix := fmt.Sprintf(".tmp%v", time.Now().UnixNano())

	writer, err := os.OpenFile(fn+tmpSuffix, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		lock.release()
		return nil, errors.Wrapf(err, "create %s", fn+tmpSuffix)
	}

	return &SafeWriter{
		lock:      lock,
		writer:    writer,
		fn:        fn,
		tmpSuffix: tmpSuffix,
	}, nil
}

// Write 写字节流.
func (w *SafeWriter) Write(content []byte) (int, error) {
	n, err := w.writer.Write(content)
	w.written += int64(n)
	return n, err
}

// CopyFrom 将r中的全部内容写入临时文件, 直到r返回io.EOF.
func (w *SafeWriter) CopyFrom(r io.Reader) (int64, error) {
	buf := make([]byte, __DefaultCopyBufferSize)
	// io.Writer only, so *os.File.ReadFrom cannot bypass the buffer
	n, err := io.CopyBuffer(struct{ io.Writer }{w.writer}, r, buf)
	w.written += n
	return n, err
}

// Written 返回已写入的字节数.
func (w *SafeWriter) Written() int64 {
	return w.written
}

// Commit 持久化数据到硬盘并替换目标文件.
func (w *SafeWriter) Commit() error {
	defer w.exit()
	if err := w.writer.Sync(); err != nil {
		return err
	}
	if err := os.Rename(w.fn+w.tmpSuffix, w.fn); err != nil {
		return errors.Wrapf(err, "commit %s", w.fn)
	}
	log.Debug().Msgf("committed %d bytes to %s", w.written, w.fn)
	return nil
}

// Abort 放弃当前写操作.
func (w *SafeWriter) Abort() {
	log.Debug().Msgf("abort writing %s", w.fn)
	w.exit()
}

func (w *SafeWriter) exit() {
	if err := w.writer.Close(); err != nil {
		log.Warn().Err(err).Msgf("failed to close %s", w.fn+w.tmpSuffix)
	}
	if err := os.Remove(w.fn + w.tmpSuffix); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msgf("failed to remove %s", w.fn+w.tmpSuffix)
	}
	w.lock.release()
}
