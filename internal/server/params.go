package server

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/tential/gqlbody"
)

var errInvalidVariables = errors.New("variables are invalid JSON")

// GraphQLParams are the request parameters a GraphQL executor consumes.
type GraphQLParams struct {
	Query         string         `json:"query,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
	Raw           bool           `json:"-"`
}

// graphQLParams merges URL query values with the decoded body. URL values
// take precedence.
func graphQLParams(query url.Values, body gqlbody.Params) (GraphQLParams, error) {
	var p GraphQLParams

	if q, ok := lookup(query, body, "query"); ok {
		if s, isString := q.(string); isString {
			p.Query = s
		}
	}

	if name, ok := lookup(query, body, "operationName"); ok {
		if s, isString := name.(string); isString {
			p.OperationName = s
		}
	}

	if v, ok := lookup(query, body, "variables"); ok {
		switch vars := v.(type) {
		case string:
			if vars != "" {
				if err := json.Unmarshal([]byte(vars), &p.Variables); err != nil {
					return GraphQLParams{}, errInvalidVariables
				}
			}
		case map[string]any:
			p.Variables = vars
		}
	}

	_, inURL := query["raw"]
	_, inBody := body["raw"]
	p.Raw = inURL || inBody

	return p, nil
}

func lookup(query url.Values, body gqlbody.Params, key string) (any, bool) {
	if vs, ok := query[key]; ok && len(vs) > 0 {
		return vs[0], true
	}

	v, ok := body[key]
	if !ok || v == nil {
		return nil, false
	}

	if list, isList := v.([]string); isList {
		if len(list) == 0 {
			return nil, false
		}
		return list[0], true
	}

	return v, true
}
