package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/munnerz/goautoneg"
	"github.com/sirupsen/logrus"
	"github.com/tential/gqlbody"
	"github.com/tential/gqlbody/graphiql"
	"github.com/tential/gqlbody/internal/metrics"
)

const (
	msgMissingQuery     = "Must provide query string."
	msgInvalidVariables = "Variables are invalid JSON."
)

type errorResponse struct {
	Errors []errorMessage `json:"errors"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// mediaTypeLabel maps a Content-Type header onto a bounded set of metric labels.
func mediaTypeLabel(contentType string) string {
	if contentType == "" {
		return "none"
	}

	mt, err := gqlbody.ParseMediaType(contentType)
	if err != nil {
		return "invalid"
	}

	switch mt.Type {
	case gqlbody.MediaTypeGraphQL:
		return "graphql"
	case gqlbody.MediaTypeJSON:
		return "json"
	case gqlbody.MediaTypeForm:
		return "form"
	}

	return "other"
}

// prefersHTML reports whether the client would rather get HTML than JSON.
func prefersHTML(accept string) bool {
	if accept == "" {
		return false
	}

	return goautoneg.Negotiate(accept, []string{"application/json", "text/html"}) == "text/html"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to write JSON response")
	}
}

func (s *Server) writeErrors(w http.ResponseWriter, status int, messages ...string) {
	resp := errorResponse{Errors: make([]errorMessage, 0, len(messages))}
	for _, m := range messages {
		resp.Errors = append(resp.Errors, errorMessage{Message: m})
	}

	s.writeJSON(w, status, resp)
}

// handleBodyError is the parser's error handler.
func (s *Server) handleBodyError(w http.ResponseWriter, r *http.Request, err *gqlbody.Error) {
	metrics.RecordParse(mediaTypeLabel(r.Header.Get("Content-Type")), err.Kind.String(), 0)

	s.logger.WithError(err).WithFields(logrus.Fields{
		"kind":   err.Kind.String(),
		"status": err.Status,
		"path":   r.URL.Path,
	}).Warn("Rejected GraphQL request body")

	s.writeErrors(w, err.Status, err.Message)
}

// handleGraphQL serves the GraphQL endpoint. Execution is left to the
// caller, so the response carries the decoded request parameters.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	body, ok := gqlbody.FromContext(r.Context())
	if !ok {
		body = gqlbody.Params{}
	}
	metrics.RecordParse(mediaTypeLabel(r.Header.Get("Content-Type")), "ok", len(body))

	params, err := graphQLParams(r.URL.Query(), body)
	if err != nil {
		if errors.Is(err, errInvalidVariables) {
			s.writeErrors(w, http.StatusBadRequest, msgInvalidVariables)
			return
		}
		s.writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	showGraphiQL := s.cfg.GraphiQL.Enabled &&
		r.Method == http.MethodGet &&
		!params.Raw &&
		prefersHTML(r.Header.Get("Accept"))

	if showGraphiQL {
		s.renderGraphiQL(w, params)
		return
	}

	if params.Query == "" {
		s.writeErrors(w, http.StatusBadRequest, msgMissingQuery)
		return
	}

	s.writeJSON(w, http.StatusOK, params)
}

func (s *Server) renderGraphiQL(w http.ResponseWriter, params GraphQLParams) {
	page, err := graphiql.Render(graphiql.Data{
		Query:         params.Query,
		Variables:     params.Variables,
		OperationName: params.OperationName,
	}, s.cfg.GraphiQL.Options())
	if err != nil {
		s.logger.WithError(err).Error("Failed to render GraphiQL")
		s.writeErrors(w, http.StatusInternalServerError, "Failed to render GraphiQL.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.WithError(err).Error("Failed to write GraphiQL page")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
