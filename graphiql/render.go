// Package graphiql renders the in-browser GraphiQL explorer.
//
// Render is pure: it embeds the request parameters, an optional execution
// result and the explorer options into a standalone HTML page that loads
// GraphiQL from a CDN.
package graphiql

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	graphiqlVersion = "1.4.7"
	reactVersion    = "17.0.2"

	// WebsocketClientV0 selects subscriptions-transport-ws.
	WebsocketClientV0 = "v0"
	// WebsocketClientV1 selects graphql-ws.
	WebsocketClientV1 = "v1"
)

// Data is what the page is pre-populated with.
type Data struct {
	Query         string
	Variables     map[string]any
	OperationName string
	Result        any
}

// Options tune the explorer.
type Options struct {
	// DefaultQuery is shown when no query is given and none is stored from
	// a previous session.
	DefaultQuery string

	HeaderEditorEnabled  bool
	ShouldPersistHeaders bool

	// SubscriptionEndpoint enables subscriptions over a websocket.
	SubscriptionEndpoint string

	// WebsocketClient is WebsocketClientV0 (default) or WebsocketClientV1.
	WebsocketClient string
}

type page struct {
	Notice template.HTML

	GraphiQLVersion string
	ReactVersion    string

	Query         *string
	Variables     *string
	OperationName *string
	Result        *string

	DefaultQuery         *string
	HeaderEditorEnabled  bool
	ShouldPersistHeaders bool

	SubscriptionEndpoint string
	WebsocketV1          bool
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Render returns the GraphiQL page for data. opts may be nil.
func Render(data Data, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}

	p := page{
		Notice:               notice,
		GraphiQLVersion:      graphiqlVersion,
		ReactVersion:         reactVersion,
		Query:                nonEmpty(data.Query),
		OperationName:        nonEmpty(data.OperationName),
		DefaultQuery:         nonEmpty(opts.DefaultQuery),
		HeaderEditorEnabled:  opts.HeaderEditorEnabled,
		ShouldPersistHeaders: opts.ShouldPersistHeaders,
		SubscriptionEndpoint: opts.SubscriptionEndpoint,
	}

	switch opts.WebsocketClient {
	case "", WebsocketClientV0:
	case WebsocketClientV1:
		p.WebsocketV1 = true
	default:
		return "", fmt.Errorf("unknown websocket client %q", opts.WebsocketClient)
	}

	if data.Variables != nil {
		s, err := indentJSON(data.Variables)
		if err != nil {
			return "", fmt.Errorf("encode variables: %w", err)
		}
		p.Variables = &s
	}

	if data.Result != nil {
		s, err := indentJSON(data.Result)
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		p.Result = &s
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render graphiql: %w", err)
	}

	return buf.String(), nil
}
