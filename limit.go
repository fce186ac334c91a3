package gqlbody

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// DefaultMaxBytes is the largest decoded body the parser accepts.
const DefaultMaxBytes int64 = 100_000_000

var errTooLarge = errors.New("request entity too large")

// maxBytesReader fails with errTooLarge once more than n bytes have been read.
type maxBytesReader struct {
	r   io.Reader
	n   int64
	err error
}

func newMaxBytesReader(r io.Reader, n int64) *maxBytesReader {
	return &maxBytesReader{r: r, n: n}
}

func (l *maxBytesReader) Read(p []byte) (int, error) {
	if l.err != nil {
		return 0, l.err
	}

	if len(p) == 0 {
		return 0, nil
	}

	// Ask for one byte past the limit so an exact fit still reads clean.
	if int64(len(p))-1 > l.n {
		p = p[:l.n+1]
	}

	n, err := l.r.Read(p)
	if int64(n) <= l.n {
		l.n -= int64(n)
		l.err = err
		return n, err
	}

	n = int(l.n)
	l.n = 0
	l.err = errTooLarge

	return n, l.err
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}

// readAll buffers r, which must already be bounded. When sizeHint is the
// exact length the buffer is allocated once.
func readAll(r io.Reader, sizeHint int64) ([]byte, error) {
	var buf bytes.Buffer
	if sizeHint > 0 {
		buf.Grow(int(sizeHint) + bytes.MinRead)
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
