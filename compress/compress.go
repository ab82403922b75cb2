package compress

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	streamio "github.com/usherasnick/concat-stream/stream-io"
)

// OpenZip 将zip包中所有普通文件按目录顺序拼接为一个流.
// The archive stays open until the returned reader is closed or fully read.
func OpenZip(src string) (*streamio.ConcatReader, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}

	sources, err := ZipSources(&zr.Reader)
	if err != nil {
		zr.Close() // nolint
		return nil, err
	}
	// released after every entry
	sources = append(sources, &closerSource{c: zr})

	log.Debug().Msgf("open %s with %d entries", src, len(sources)-1)
	return streamio.NewConcatReader(sources)
}

// ZipSources 返回zip包中每个普通文件对应的源.
// Entries are opened lazily on first read, so an archive with many entries does not hold
// many decompressors at once.
func ZipSources(zr *zip.Reader) ([]io.ReadCloser, error) {
	sources := make([]io.ReadCloser, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		sources = append(sources, streamio.NewFillReader(&entrySource{file: f}))
	}
	return sources, nil
}

// Unzip 将zip包解压到dst目录.
func Unzip(dst, src string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	if err = os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	unit := func(path string, file *zip.File) error {
		fr := streamio.NewFillReader(&entrySource{file: file})
		defer fr.Close()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		fw, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, file.Mode())
		if err != nil {
			return err
		}
		defer fw.Close()

		if _, err = io.Copy(fw, fr); err != nil {
			return err
		}
		return nil
	}

	for _, f := range zr.File {
		p := filepath.Join(dst, f.Name)

		if f.FileInfo().IsDir() {
			if err = os.MkdirAll(p, 0755); err != nil {
				return err
			}
			continue
		}

		if err = unit(p, f); err != nil {
			return err
		}
	}

	return nil
}

// entrySource opens a zip entry on first read.
type entrySource struct {
	file *zip.File
	rc   io.ReadCloser
}

func (s *entrySource) Read(p []byte) (int, error) {
	if s.rc == nil {
		rc, err := s.file.Open()
		if err != nil {
			return 0, err
		}
		s.rc = rc
	}
	return s.rc.Read(p)
}

func (s *entrySource) Close() error {
	if s.rc == nil {
		return nil
	}
	return s.rc.Close()
}

// closerSource is an empty source releasing c when closed.
type closerSource struct {
	c io.Closer
}

func (s *closerSource) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (s *closerSource) Close() error {
	return s.c.Close()
}
