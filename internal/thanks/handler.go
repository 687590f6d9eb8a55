// Package thanks serves the dusty-domains "thank you" page.
//
// One invocation renders the thanks route, looks up the screenshot recorded for
// the submitted site and substitutes it into the page. Failures are collapsed at
// a single boundary into a JSON error document.
package thanks

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/metrics"
	"github.com/JakeFAU/dusty-domains/internal/render"
)

const (
	// Placeholder is the token templates use where the screenshot URL belongs.
	Placeholder = "DUSTY_DOMAINS_SCREENSHOT_URL"
	// RouteName is the serverless route rendered by the handler.
	RouteName = "thanks"
	// SiteParam is the path parameter holding the submitted site.
	SiteParam = "site"

	contentTypeHTML = "text/html; charset=UTF-8"
	contentTypeJSON = "application/json"
)

// Request is one invocation's input.
type Request struct {
	Path  string
	Query map[string]string
}

// Response is the invocation's result in function-runtime shape.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Renderer renders serverless routes.
type Renderer interface {
	Render(ctx context.Context, name string, req render.Request) (render.Page, error)
	IsServerlessURL(path string) bool
}

// Resolver maps a site to its screenshot URL.
type Resolver interface {
	Resolve(ctx context.Context, site string) (string, error)
}

// Handler renders thanks pages.
type Handler struct {
	renderer Renderer
	resolver Resolver
	logger   *zap.Logger
}

// NewHandler wires a Handler. A nil logger discards output.
func NewHandler(renderer Renderer, resolver Resolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{renderer: renderer, resolver: resolver, logger: logger}
}

// Handle runs one invocation. It never fails: errors become JSON responses.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	body, err := h.render(ctx, req)
	if err != nil {
		// Unmatched paths are usually dev-server asset probes; only log real routes.
		if h.renderer.IsServerlessURL(req.Path) {
			h.logger.Error("serverless error",
				zap.String("path", req.Path),
				zap.Error(err),
			)
		}
		resp := errorResponse(err)
		metrics.ObservePage(metrics.PageError, resp.StatusCode)
		return resp
	}

	metrics.ObservePage(metrics.PageOK, http.StatusOK)
	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": contentTypeHTML},
		Body:       body,
	}
}

func (h *Handler) render(ctx context.Context, req Request) (string, error) {
	page, err := h.renderer.Render(ctx, RouteName, render.Request{Path: req.Path, Query: req.Query})
	if err != nil {
		return "", err
	}

	screenshotURL, err := h.resolver.Resolve(ctx, page.Data.Path[SiteParam])
	if err != nil {
		return "", err
	}

	return strings.ReplaceAll(page.Content, Placeholder, html.EscapeString(screenshotURL)), nil
}

type statusCoder interface {
	HTTPStatusCode() int
}

func errorResponse(err error) Response {
	status := http.StatusInternalServerError
	var sc statusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() >= 400 {
		status = sc.HTTPStatusCode()
	}

	body, marshalErr := json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	if marshalErr != nil {
		body = []byte(`{"error": "internal error"}`)
	}

	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(body),
	}
}
