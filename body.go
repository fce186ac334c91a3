package gqlbody

import (
	"context"
	"io"
	"net/http"
)

// Params is the decoded parameter map handed to a GraphQL executor. It
// usually carries "query", "variables" and "operationName".
type Params map[string]any

// BodyKind identifies which variant a Body holds.
type BodyKind int

const (
	BodyAbsent BodyKind = iota
	BodyBytes
	BodyString
	BodyStructured
)

func (k BodyKind) String() string {
	switch k {
	case BodyAbsent:
		return "absent"
	case BodyBytes:
		return "bytes"
	case BodyString:
		return "string"
	case BodyStructured:
		return "structured"
	}

	return "unknown"
}

// Body is a request body that an upstream handler may already have parsed.
// The zero value is an absent body.
type Body struct {
	kind   BodyKind
	raw    []byte
	text   string
	params Params
}

// NoBody returns an absent body. The stream will be read.
func NoBody() Body { return Body{} }

// RawBytes returns a body that was read upstream but not decoded.
func RawBytes(b []byte) Body { return Body{kind: BodyBytes, raw: b} }

// RawString returns a body that was read upstream as text.
func RawString(s string) Body { return Body{kind: BodyString, text: s} }

// Structured returns a body that was already decoded into parameters. A nil
// map is treated as empty.
func Structured(p Params) Body {
	if p == nil {
		p = Params{}
	}

	return Body{kind: BodyStructured, params: p}
}

// Kind reports which variant b holds. Callers that handle some variants
// themselves switch on it before reading the matching accessor.
func (b Body) Kind() BodyKind { return b.kind }

// Bytes returns the raw bytes of a BodyBytes body and nil otherwise. The
// parser never decodes them, so a caller wanting them decoded must do so
// itself.
func (b Body) Bytes() []byte { return b.raw }

// String returns the text of a BodyString body and "" otherwise.
func (b Body) String() string { return b.text }

// Params returns the parameters of a BodyStructured body and nil otherwise.
func (b Body) Params() Params { return b.params }

// Request is the part of an inbound request the parser reads from. It is
// never modified and Stream is never closed.
type Request struct {
	Header http.Header
	Body   Body
	Stream io.Reader

	// ContentLength is the length of Stream as sent, or -1 or 0 if unknown.
	// It only sizes the read buffer.
	ContentLength int64
}

type bodyContextKey struct{}

// WithBody returns a context carrying a pre-parsed body for FromHTTP.
func WithBody(ctx context.Context, b Body) context.Context {
	return context.WithValue(ctx, bodyContextKey{}, b)
}

// BodyFromContext returns the pre-parsed body stored by WithBody.
func BodyFromContext(ctx context.Context) (Body, bool) {
	b, ok := ctx.Value(bodyContextKey{}).(Body)
	return b, ok
}

// FromHTTP adapts a net/http request.
func FromHTTP(r *http.Request) Request {
	body, _ := BodyFromContext(r.Context())

	var stream io.Reader = http.NoBody
	if r.Body != nil {
		stream = r.Body
	}

	return Request{
		Header:        r.Header,
		Body:          body,
		Stream:        stream,
		ContentLength: r.ContentLength,
	}
}
