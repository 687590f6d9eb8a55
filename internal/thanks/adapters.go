package thanks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// ServeHTTP adapts net/http requests. Only the first value of each query key is kept.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := make(map[string]string, len(r.URL.Query()))
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	resp := h.Handle(r.Context(), Request{Path: r.URL.EscapedPath(), Query: query})

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write([]byte(resp.Body)); err != nil {
		h.logger.Warn("write response failed", zap.Error(err))
	}
}

// HandleAPIGateway adapts the Lambda proxy contract used by Netlify and AWS functions.
// The returned error is always nil; failures are encoded in the response.
// event.Path arrives decoded, so it is re-escaped before route matching.
func (h *Handler) HandleAPIGateway(
	ctx context.Context,
	event events.APIGatewayProxyRequest,
) (events.APIGatewayProxyResponse, error) {
	query := event.QueryStringParameters
	if query == nil {
		query = map[string]string{}
	}

	path := (&url.URL{Path: event.Path}).EscapedPath()
	resp := h.Handle(ctx, Request{Path: path, Query: query})

	return events.APIGatewayProxyResponse{
		StatusCode:      resp.StatusCode,
		Headers:         resp.Headers,
		Body:            resp.Body,
		IsBase64Encoded: false,
	}, nil
}
