package gqlbody

import (
	"context"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Parser decodes request bodies. It is safe for concurrent use.
type Parser struct {
	maxBytes     int64
	logger       *logrus.Entry
	errorHandler ErrorHandler
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxBytes sets the largest decoded body accepted. Values below one
// are ignored.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithLogger sets the logger used by Middleware for rejected bodies.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithErrorHandler replaces the handler Middleware calls when a body is
// rejected.
func WithErrorHandler(h ErrorHandler) Option {
	return func(p *Parser) {
		if h != nil {
			p.errorHandler = h
		}
	}
}

// New returns a Parser with the given options applied.
func New(opts ...Option) *Parser {
	p := &Parser{
		maxBytes:     DefaultMaxBytes,
		logger:       discardLogger(),
		errorHandler: WriteError,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// MaxBytes returns the configured body size limit.
func (p *Parser) MaxBytes() int64 { return p.maxBytes }

var defaultParser = New()

// ParseBody decodes req with the default Parser.
func ParseBody(ctx context.Context, req Request) (Params, error) {
	return defaultParser.Parse(ctx, req)
}

// Parse decodes the body of req into Params. A request without a
// Content-Type header yields empty Params. Every failure is an *Error.
func (p *Parser) Parse(ctx context.Context, req Request) (Params, error) {
	if req.Body.Kind() == BodyStructured {
		return req.Body.Params(), nil
	}

	header := req.Header
	if header == nil {
		header = http.Header{}
	}

	values := header.Values("Content-Type")
	if len(values) == 0 {
		return Params{}, nil
	}

	mt, err := ParseMediaType(values[0])
	if err != nil {
		return nil, invalidMediaTypeError(err)
	}

	switch req.Body.Kind() {
	case BodyString:
		if mt.Type == MediaTypeGraphQL {
			return Params{"query": req.Body.String()}, nil
		}
		return Params{}, nil
	case BodyBytes:
		return Params{}, nil
	case BodyAbsent:
	case BodyStructured:
		return req.Body.Params(), nil
	}

	text, err := p.readBody(ctx, header, req, mt)
	if err != nil {
		return nil, err
	}

	return decode(mt.Type, text)
}

// readBody validates the charset and encoding, then reads the stream
// through the decompressor and the size cap.
func (p *Parser) readBody(ctx context.Context, header http.Header, req Request, mt MediaType) (string, error) {
	charset, err := charsetOf(mt)
	if err != nil {
		return "", err
	}

	enc, err := encodingOf(header)
	if err != nil {
		return "", err
	}

	stream := req.Stream
	if stream == nil {
		stream = http.NoBody
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rc := unpack(contextReader{ctx: ctx, r: stream}, enc)
	defer rc.Close()

	raw, err := readAll(newMaxBytesReader(rc, p.maxBytes), p.sizeHint(req.ContentLength, enc))
	if err != nil {
		return "", readError(err)
	}

	text, err := charset.decode(raw)
	if err != nil {
		return "", readError(err)
	}

	return text, nil
}

// sizeHint is the buffer size to start reading with. Only an identity
// body's Content-Length says how much will be read.
func (p *Parser) sizeHint(contentLength int64, enc Encoding) int64 {
	if enc != EncodingIdentity || contentLength <= 0 {
		return 0
	}

	return min(contentLength, p.maxBytes)
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return logrus.NewEntry(l)
}
