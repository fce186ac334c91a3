package gqlbody

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Media types with a dedicated decoder.
const (
	MediaTypeGraphQL = "application/graphql"
	MediaTypeJSON    = "application/json"
	MediaTypeForm    = "application/x-www-form-urlencoded"
)

// MediaType is a parsed Content-Type header.
type MediaType struct {
	Type   string
	Params map[string]string
}

// ParseMediaType parses a Content-Type header value. The type and parameter
// names are lower-cased.
func ParseMediaType(v string) (MediaType, error) {
	typ, params, err := mime.ParseMediaType(v)
	if err != nil {
		return MediaType{}, fmt.Errorf("parse media type %q: %w", v, err)
	}

	return MediaType{Type: typ, Params: params}, nil
}

// Charset is one of the text encodings a body may be declared in.
type Charset int

const (
	CharsetUTF8 Charset = iota
	CharsetUTF16LE
)

func (c Charset) String() string {
	switch c {
	case CharsetUTF8:
		return "utf-8"
	case CharsetUTF16LE:
		return "utf16le"
	}

	return "unknown"
}

// charsetOf returns the charset declared by mt, defaulting to utf-8.
func charsetOf(mt MediaType) (Charset, error) {
	name, ok := mt.Params["charset"]
	if !ok {
		return CharsetUTF8, nil
	}

	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return CharsetUTF8, nil
	case "utf16le":
		return CharsetUTF16LE, nil
	}

	return 0, unsupportedCharsetError(name)
}

func (c Charset) encoding() encoding.Encoding {
	switch c {
	case CharsetUTF8:
		return unicode.UTF8
	case CharsetUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}

	panic(fmt.Sprintf("gqlbody: unhandled charset %d", int(c)))
}

// decode converts raw bytes to text. Invalid sequences become U+FFFD.
func (c Charset) decode(b []byte) (string, error) {
	if c == CharsetUTF8 && utf8.Valid(b) {
		return string(b), nil
	}

	out, err := c.encoding().NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c, err)
	}

	return string(out), nil
}
