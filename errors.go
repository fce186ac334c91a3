package gqlbody

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrorKind classifies a body parsing failure.
type ErrorKind int

const (
	KindUnsupportedCharset ErrorKind = iota + 1
	KindUnsupportedEncoding
	KindPayloadTooLarge
	KindMalformedBody
	KindInvalidJSON
	KindInvalidMediaType
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedCharset:
		return "unsupported_charset"
	case KindUnsupportedEncoding:
		return "unsupported_encoding"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindMalformedBody:
		return "malformed_body"
	case KindInvalidJSON:
		return "invalid_json"
	case KindInvalidMediaType:
		return "invalid_media_type"
	}

	return "unknown"
}

// Status returns the HTTP status code reported for errors of this kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindUnsupportedCharset, KindUnsupportedEncoding:
		return http.StatusUnsupportedMediaType
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindMalformedBody, KindInvalidJSON, KindInvalidMediaType:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnsupportedCharset  = &Error{Kind: KindUnsupportedCharset}
	ErrUnsupportedEncoding = &Error{Kind: KindUnsupportedEncoding}
	ErrPayloadTooLarge     = &Error{Kind: KindPayloadTooLarge}
	ErrMalformedBody       = &Error{Kind: KindMalformedBody}
	ErrInvalidJSON         = &Error{Kind: KindInvalidJSON}
	ErrInvalidMediaType    = &Error{Kind: KindInvalidMediaType}
)

const msgInvalidJSON = "POST body sent invalid JSON."

// Error is returned for every request the parser rejects. Message is safe to
// send back to the client as is.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{
		Kind:    kind,
		Status:  kind.Status(),
		Message: msg,
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "request body error"
	}

	if e.Message == "" {
		return e.Kind.String()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}

	return e.Kind == t.Kind
}

func unsupportedCharsetError(charset string) *Error {
	return newError(KindUnsupportedCharset, fmt.Sprintf("Unsupported charset %q.", strings.ToUpper(charset)), nil)
}

func unsupportedEncodingError(encoding string) *Error {
	return newError(KindUnsupportedEncoding, fmt.Sprintf("Unsupported content-encoding %q.", encoding), nil)
}

func invalidMediaTypeError(err error) *Error {
	return newError(KindInvalidMediaType, fmt.Sprintf("Invalid Content-Type header: %v.", err), err)
}

func invalidJSONError(err error) *Error {
	return newError(KindInvalidJSON, msgInvalidJSON, err)
}

// readError classifies a failure of the bounded read.
func readError(err error) *Error {
	if errors.Is(err, errTooLarge) {
		return newError(KindPayloadTooLarge, "Invalid body: request entity too large.", err)
	}

	cause := err
	var decErr *DecompressionError
	if errors.As(err, &decErr) && decErr.Err != nil {
		cause = decErr.Err
	}

	return newError(KindMalformedBody, fmt.Sprintf("Invalid body: %v.", cause), err)
}

// DecompressionError is returned when a supported Content-Encoding fails to decode.
type DecompressionError struct {
	Encoding string
	Err      error
}

func decompressionErrorMessage(encoding string) string {
	if encoding == "" {
		return "Content-Encoding decode error"
	}

	return fmt.Sprintf("Content-Encoding: %s set but unable to decompress body", encoding)
}

func (e *DecompressionError) Error() string {
	if e == nil {
		return "Content-Encoding decode error"
	}

	if e.Err == nil {
		return decompressionErrorMessage(e.Encoding)
	}

	return fmt.Sprintf("%s: %v", decompressionErrorMessage(e.Encoding), e.Err)
}

func (e *DecompressionError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

type errorWrappingReadCloser struct {
	rc       io.ReadCloser
	encoding string
}

// io.ReadCloser passthrough should preserve upstream errors.
//
//nolint:wrapcheck
func (r *errorWrappingReadCloser) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		var decErr *DecompressionError
		if errors.As(err, &decErr) {
			return n, err
		}

		return n, &DecompressionError{Encoding: r.encoding, Err: err}
	}

	return n, err
}

// io.Closer passthrough should preserve upstream errors.
//
//nolint:wrapcheck
func (r *errorWrappingReadCloser) Close() error {
	return r.rc.Close()
}
