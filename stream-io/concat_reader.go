package streamio

import (
	"io"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ConcatReader 将一组有序的源拼接成一个连续的只读流 (非线程安全).
//
// ConcatReader owns every source handed to it. A source is closed as soon as it is
// exhausted; whatever is left is closed by Close. Callers must call Close on every
// exit path.
type ConcatReader struct {
	remaining deque.Deque // of io.ReadCloser, front is the active source
	released  int         // sources popped so far, for logging
	closed    bool

	advance AdvancePolicy
	logger  *zerolog.Logger
}

// NewConcatReader 返回ConcatReader实例, 使用默认配置.
func NewConcatReader(sources []io.ReadCloser) (*ConcatReader, error) {
	return NewConcatReaderWithCfg(sources, nil)
}

// NewConcatReaderWithCfg 返回ConcatReader实例.
// sources为nil时返回ErrInvalidArgument, 空列表合法 (立即读完).
func NewConcatReaderWithCfg(sources []io.ReadCloser, cfg *ConcatReaderCfg) (*ConcatReader, error) {
	if sources == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil sources")
	}
	for i, src := range sources {
		if src == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "nil source at index %d", i)
		}
	}

	r := &ConcatReader{
		advance: cfg.advance(),
		logger:  cfg.logger(),
	}
	for _, src := range sources {
		r.remaining.PushBack(src)
	}
	r.logger.Debug().Msgf("concat reader takes %d sources, advance on %s", len(sources), r.advance)
	return r, nil
}

// Remaining 返回尚未读完的源数量.
func (r *ConcatReader) Remaining() int {
	return r.remaining.Len()
}

// Read implements io.Reader. Unlike ReadInto it reports io.EOF once every source is
// exhausted, so the reader can be handed to io.Copy and friends.
func (r *ConcatReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.Wrap(ErrClosed, "read")
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.ReadInto(p, 0, len(p))
	if n == 0 && err == nil && r.remaining.Len() == 0 {
		return 0, io.EOF
	}
	return n, err
}

// ReadInto 从当前源读取最多count个字节写入buf[offset:], 当前源短读时依次切换到后续的源.
//
// It returns the number of bytes written, which is less than count only when every
// source ran out during the call, and 0 with a nil error once nothing is left.
// A non-EOF error from a source is returned with the bytes written so far; that
// source stays active. Under AdvanceOnEOF a short read returns early once some bytes
// were written; empty reads are retried, up to __MaxConsecutiveEmptyReads times.
func (r *ConcatReader) ReadInto(buf []byte, offset, count int) (int, error) {
	if r.closed {
		return 0, errors.Wrap(ErrClosed, "read")
	}
	if buf == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "nil buffer")
	}
	if offset < 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "negative offset %d", offset)
	}
	if count < 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "negative count %d", count)
	}
	if offset > len(buf) || count > len(buf)-offset {
		return 0, errors.Wrapf(ErrInvalidArgument, "offset %d + count %d exceeds buffer length %d", offset, count, len(buf))
	}

	written := 0
	empty := 0
	for r.remaining.Len() > 0 {
		want := count - written
		// every partial read lands right after the bytes already written
		n, err := r.head().Read(buf[offset+written : offset+count])
		written += n

		if err != nil && err != io.EOF {
			return written, err
		}

		if r.advance == AdvanceOnEOF {
			if err == io.EOF {
				r.popHead("eof")
				empty = 0
				if n >= want {
					break
				}
				continue
			}
			if n >= want || written > 0 {
				break
			}
			// 0, nil is not the end of the source (reader rule 5)
			empty++
			if empty >= __MaxConsecutiveEmptyReads {
				return written, errors.Wrapf(io.ErrNoProgress, "source #%d", r.released)
			}
			continue
		}

		if n >= want {
			break
		}
		r.logger.Debug().Msgf("short read %d < %d on source #%d", n, want, r.released)
		r.popHead("exhausted")
	}
	return written, nil
}

// Close 依次关闭所有尚未读完的源, 可重复调用.
// A source that fails to close is logged and skipped, Close itself always returns nil.
func (r *ConcatReader) Close() error {
	if r.closed {
		return nil
	}
	left := r.remaining.Len()
	for r.remaining.Len() > 0 {
		r.popHead("closing")
	}
	r.closed = true
	r.logger.Debug().Msgf("concat reader closed, released %d remaining sources", left)
	return nil
}

func (r *ConcatReader) head() io.ReadCloser {
	return r.remaining.Front().(io.ReadCloser)
}

// popHead removes the active source and releases it.
func (r *ConcatReader) popHead(reason string) {
	src := r.remaining.PopFront().(io.ReadCloser)
	idx := r.released
	r.released++
	if err := src.Close(); err != nil {
		r.logger.Warn().Err(err).Msgf("failed to release source #%d (%s)", idx, reason)
	}
}
