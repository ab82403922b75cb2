package streamio

import "io"

type fillReader struct {
	rc io.ReadCloser
}

// NewFillReader 包装一个可能提前短读的源, 使其只在数据读完时才返回短读.
// Each Read keeps reading from rc until p is full or rc reports io.EOF.
func NewFillReader(rc io.ReadCloser) io.ReadCloser {
	return &fillReader{rc: rc}
}

func (f *fillReader) Read(p []byte) (int, error) {
	n, err := io.ReadFull(f.rc, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (f *fillReader) Close() error {
	return f.rc.Close()
}
