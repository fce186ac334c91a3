package gqlbody

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Encoding is a Content-Encoding the parser can undo.
type Encoding int

const (
	EncodingIdentity Encoding = iota
	EncodingDeflate
	EncodingGzip
)

func (e Encoding) String() string {
	switch e {
	case EncodingIdentity:
		return "identity"
	case EncodingDeflate:
		return "deflate"
	case EncodingGzip:
		return "gzip"
	}

	return "unknown"
}

// encodingOf reads the Content-Encoding header. A missing header means identity.
func encodingOf(h http.Header) (Encoding, error) {
	values := h.Values("Content-Encoding")
	if len(values) == 0 {
		return EncodingIdentity, nil
	}

	switch encoding := strings.ToLower(values[0]); encoding {
	case "identity":
		return EncodingIdentity, nil
	case "deflate":
		return EncodingDeflate, nil
	case "gzip":
		return EncodingGzip, nil
	default:
		return 0, unsupportedEncodingError(encoding)
	}
}

// unpack wraps r with the decoder for e. Nothing is read from r until the
// returned reader is read from, so a bad gzip or zlib header is reported by
// Read rather than here.
func unpack(r io.Reader, e Encoding) io.ReadCloser {
	switch e {
	case EncodingIdentity:
		return io.NopCloser(r)
	case EncodingDeflate:
		return &errorWrappingReadCloser{
			rc:       &lazyReadCloser{src: r, open: zlib.NewReader},
			encoding: e.String(),
		}
	case EncodingGzip:
		return &errorWrappingReadCloser{
			rc: &lazyReadCloser{src: r, open: func(r io.Reader) (io.ReadCloser, error) {
				return gzip.NewReader(r)
			}},
			encoding: e.String(),
		}
	}

	panic("gqlbody: unhandled content-encoding " + e.String())
}

// lazyReadCloser opens a decompressor on first Read.
type lazyReadCloser struct {
	src  io.Reader
	open func(io.Reader) (io.ReadCloser, error)
	rc   io.ReadCloser
	err  error
}

func (l *lazyReadCloser) Read(p []byte) (int, error) {
	if l.err != nil {
		return 0, l.err
	}

	if l.rc == nil {
		rc, err := l.open(l.src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			l.err = err
			return 0, err
		}
		l.rc = rc
	}

	return l.rc.Read(p)
}

func (l *lazyReadCloser) Close() error {
	if l.rc == nil {
		return nil
	}

	return l.rc.Close()
}
