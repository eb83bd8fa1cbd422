// Package tail reads the last lines of a text file without scanning all of it.
package tail

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkSize 是向后读取时单次读取的字节数。
const ChunkSize = 4096

// ErrUnreadable 表示路径无法打开或读取。
var ErrUnreadable = errors.New("tail: file unreadable")

// Read returns the last n lines of the file at path, including their line
// terminators. The whole file is returned when it holds fewer than n lines
// or when n <= 0. Every failure wraps ErrUnreadable.
func Read(path string, n int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrUnreadable, path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrUnreadable, path)
	}
	return ReadFrom(file, info.Size(), n)
}

// ReadFrom is Read over an arbitrary ReaderAt of the given size. Only the
// bytes of the tail plus at most one partial chunk are read.
func ReadFrom(r io.ReaderAt, size int64, n int) (string, error) {
	if size <= 0 {
		return "", nil
	}
	if n <= 0 {
		return readRange(r, 0, size)
	}

	// 文件末尾的换行符只是最后一行的结束符，不算作新的一行。
	start := int64(0)
	found := 0
	buf := make([]byte, ChunkSize)
	pos := size

scan:
	for pos > 0 {
		length := int64(ChunkSize)
		if pos < length {
			length = pos
		}
		pos -= length
		chunk := buf[:length]
		if err := readFull(r, chunk, pos); err != nil {
			return "", err
		}
		for i := len(chunk) - 1; i >= 0; i-- {
			if chunk[i] != '\n' {
				continue
			}
			at := pos + int64(i)
			if at == size-1 {
				continue
			}
			found++
			if found == n {
				start = at + 1
				break scan
			}
		}
	}

	return readRange(r, start, size)
}

func readRange(r io.ReaderAt, start, end int64) (string, error) {
	out := make([]byte, end-start)
	if err := readFull(r, out, start); err != nil {
		return "", err
	}
	return string(out), nil
}

func readFull(r io.ReaderAt, p []byte, off int64) error {
	got, err := r.ReadAt(p, off)
	if got == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: read at %d: %w", ErrUnreadable, off, err)
}
