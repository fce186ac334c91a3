package gqlbody

import (
	"bytes"
	"context"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestBodyAccessors(t *testing.T) {
	raw := []byte(`{"query":"{ b }"}`)

	tests := []struct {
		body   Body
		kind   BodyKind
		bytes  []byte
		text   string
		params Params
	}{
		{body: NoBody(), kind: BodyAbsent},
		{body: RawBytes(raw), kind: BodyBytes, bytes: raw},
		{body: RawString("{ s }"), kind: BodyString, text: "{ s }"},
		{body: Structured(Params{"query": "{ p }"}), kind: BodyStructured, params: Params{"query": "{ p }"}},
		{body: Structured(nil), kind: BodyStructured, params: Params{}},
	}

	for _, tt := range tests {
		if got := tt.body.Kind(); got != tt.kind {
			t.Fatalf("got kind %s want %s", got, tt.kind)
		}
		if got := tt.body.Bytes(); !bytes.Equal(got, tt.bytes) {
			t.Fatalf("%s: got bytes %q want %q", tt.kind, got, tt.bytes)
		}
		if got := tt.body.String(); got != tt.text {
			t.Fatalf("%s: got text %q want %q", tt.kind, got, tt.text)
		}
		if got := tt.body.Params(); !reflect.DeepEqual(got, tt.params) {
			t.Fatalf("%s: got params %#v want %#v", tt.kind, got, tt.params)
		}
	}
}

func TestFromHTTPCarriesUpstreamBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader("ignored"))
	req = req.WithContext(WithBody(context.Background(), RawBytes([]byte("{ b }"))))

	got := FromHTTP(req)
	if got.Body.Kind() != BodyBytes || string(got.Body.Bytes()) != "{ b }" {
		t.Fatalf("got body %s %q", got.Body.Kind(), got.Body.Bytes())
	}
	if got.ContentLength != int64(len("ignored")) {
		t.Fatalf("got content length %d", got.ContentLength)
	}
}
