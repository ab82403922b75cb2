package streamio

import "errors"

var (
	// ErrInvalidArgument 参数非法: nil缓冲区, 负数偏移量或长度, 越界, nil源列表.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClosed 在关闭后继续读取.
	ErrClosed = errors.New("read on closed concat reader")
	// ErrNotSupported 只读且不可定位的流不支持该操作.
	ErrNotSupported = errors.New("operation not supported")
)
