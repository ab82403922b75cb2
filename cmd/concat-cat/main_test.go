package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T, dir string, contents ...string) []string {
	var paths []string
	for i, c := range contents {
		p := filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, ioutil.WriteFile(p, []byte(c), 0644))
		paths = append(paths, p)
	}
	return paths
}

func writeZip(t *testing.T, fn string, bodies ...string) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, b := range bodies {
		w, err := zw.Create(string(rune('a'+i)) + ".txt")
		require.NoError(t, err)
		_, err = w.Write([]byte(b))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, ioutil.WriteFile(fn, buf.Bytes(), 0644))
}

func tempDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "concat-cat")
	require.NoError(t, err)
	return dir, func() { os.RemoveAll(dir) }
}

func TestRunToStdout(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	big := strings.Repeat("0123456789", 10000)
	paths := writeInputs(t, dir, "head,", "", big, ",tail")

	for _, strictEOF := range []bool{false, true} {
		var out bytes.Buffer
		err := run(options{inputs: paths, strictEOF: strictEOF}, &out)
		assert.Empty(t, err)
		assert.Equal(t, "head,"+big+",tail", out.String(), "strict-eof=%v", strictEOF)
	}
}

func TestRunToFile(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	paths := writeInputs(t, dir, "one ", "two ", "three")
	output := filepath.Join(dir, "out", "joined.txt")

	err := run(options{inputs: paths, output: output, rate: 1 << 20}, ioutil.Discard)
	assert.Empty(t, err)

	data, err := ioutil.ReadFile(output)
	assert.Empty(t, err)
	assert.Equal(t, "one two three", string(data))
}

func TestRunZip(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	first := filepath.Join(dir, "first.zip")
	second := filepath.Join(dir, "second.zip")
	big := strings.Repeat("compressible ", 20000)
	writeZip(t, first, "a1,", big)
	writeZip(t, second, "", ",b2")

	for _, strictEOF := range []bool{false, true} {
		var out bytes.Buffer
		err := run(options{inputs: []string{first, second}, zipMode: true, strictEOF: strictEOF}, &out)
		assert.Empty(t, err)
		assert.Equal(t, "a1,"+big+",b2", out.String(), "strict-eof=%v", strictEOF)
	}
}

func TestOpenInputsMissing(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	paths := writeInputs(t, dir, "exists")
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	_, err := openInputs(paths, false)
	assert.NotEmpty(t, err)
	assert.Contains(t, err.Error(), "missing.txt")

	sources, err := openInputs(paths[:1], false)
	require.NoError(t, err)
	assert.Len(t, sources, 1)
	closeAll(sources)

	_, err = openInputs(paths[:1], true)
	assert.NotEmpty(t, err)
}
