package gqlbody

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorHandler writes the response for a rejected body.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *Error)

// WriteError responds with err's status and message as text/plain.
func WriteError(w http.ResponseWriter, _ *http.Request, err *Error) {
	http.Error(w, err.Message, err.Status)
}

type paramsContextKey struct{}

// NewContext returns a context carrying decoded params.
func NewContext(ctx context.Context, p Params) context.Context {
	return context.WithValue(ctx, paramsContextKey{}, p)
}

// FromContext returns the params stored by Middleware.
func FromContext(ctx context.Context) (Params, bool) {
	p, ok := ctx.Value(paramsContextKey{}).(Params)
	return p, ok
}

// Middleware decodes the request body with the default Parser.
func Middleware(next http.Handler) http.Handler {
	return defaultParser.Middleware(next)
}

// Middleware decodes the request body once and passes the result to next
// through the request context. If decoding fails the request is answered by
// the configured ErrorHandler and next is not called.
func (p *Parser) Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		params, err := p.Parse(r.Context(), FromHTTP(r))
		if err != nil {
			var bodyErr *Error
			if !errors.As(err, &bodyErr) {
				bodyErr = newError(KindMalformedBody, err.Error(), err)
			}

			entry := p.logger.WithFields(logrus.Fields{
				"kind":             bodyErr.Kind.String(),
				"status":           bodyErr.Status,
				"content_type":     r.Header.Get("Content-Type"),
				"content_encoding": r.Header.Get("Content-Encoding"),
			})
			if bodyErr.Err != nil {
				entry = entry.WithError(bodyErr.Err)
			}
			entry.Debug(bodyErr.Message)

			p.errorHandler(w, r, bodyErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), params)))
	}

	return http.HandlerFunc(fn)
}
