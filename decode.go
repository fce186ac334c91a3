package gqlbody

import (
	"encoding/json"
	"strings"
)

// maxFormKeys caps the number of pairs read from a form body.
const maxFormKeys = 1000

// decode turns body text into Params according to the declared media type.
func decode(mediaType, text string) (Params, error) {
	switch mediaType {
	case MediaTypeGraphQL:
		return Params{"query": text}, nil
	case MediaTypeJSON:
		return decodeJSON(text)
	case MediaTypeForm:
		return decodeForm(text), nil
	}

	return Params{}, nil
}

// opensObject reports whether the first character after JSON whitespace
// (space, tab, LF, CR) is '{'.
func opensObject(text string) bool {
	rest := strings.TrimLeft(text, " \t\n\r")
	return strings.HasPrefix(rest, "{")
}

func decodeJSON(text string) (Params, error) {
	if !opensObject(text) {
		return nil, invalidJSONError(nil)
	}

	var p Params
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, invalidJSONError(err)
	}

	if p == nil {
		p = Params{}
	}

	return p, nil
}

// decodeForm parses an urlencoded body. A key seen once maps to a string,
// a repeated key to a []string in order of appearance.
func decodeForm(text string) Params {
	p := Params{}
	if text == "" {
		return p
	}

	for i, pair := range strings.Split(text, "&") {
		if i >= maxFormKeys {
			break
		}
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		key = unescapeForm(key)
		value = unescapeForm(value)

		switch prev := p[key].(type) {
		case nil:
			p[key] = value
		case string:
			p[key] = []string{prev, value}
		case []string:
			p[key] = append(prev, value)
		}
	}

	return p
}

// unescapeForm decodes '+' and every valid %XX escape. Invalid escapes are
// kept as written and bytes that do not form UTF-8 become U+FFFD.
func unescapeForm(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
				i += 2
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}

	return c - 'A' + 10
}
