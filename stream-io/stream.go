package streamio

import (
	"io"

	"github.com/pkg/errors"
)

// Stream 通用流的完整能力集合.
// Implementations that lack a capability still provide the method and fail with ErrNotSupported.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	Flush() error
	Truncate(size int64) error
	Size() (int64, error)
	Position() (int64, error)
	SetPosition(pos int64) error

	CanRead() bool
	CanWrite() bool
	CanSeek() bool
}

var (
	_ Stream        = (*ConcatReader)(nil)
	_ io.ReadCloser = (*ConcatReader)(nil)
)

// CanRead 总是可读.
func (r *ConcatReader) CanRead() bool { return true }

// CanWrite 不可写.
func (r *ConcatReader) CanWrite() bool { return false }

// CanSeek 不可定位.
func (r *ConcatReader) CanSeek() bool { return false }

func (r *ConcatReader) Write(p []byte) (int, error) {
	return 0, notSupported("write")
}

func (r *ConcatReader) Seek(offset int64, whence int) (int64, error) {
	return 0, notSupported("seek")
}

func (r *ConcatReader) Flush() error {
	return notSupported("flush")
}

func (r *ConcatReader) Truncate(size int64) error {
	return notSupported("truncate")
}

func (r *ConcatReader) Size() (int64, error) {
	return 0, notSupported("size")
}

func (r *ConcatReader) Position() (int64, error) {
	return 0, notSupported("position")
}

func (r *ConcatReader) SetPosition(pos int64) error {
	return notSupported("set position")
}

func notSupported(op string) error {
	return errors.Wrap(ErrNotSupported, op)
}
