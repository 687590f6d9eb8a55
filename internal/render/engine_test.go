package render

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/dusty-domains/web"
)

var thanksRoute = Route{Name: "thanks", Pattern: "/thanks/:site/", Template: "thanks.html"}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/layouts/base.html": {Data: []byte(
			`{{define "layout"}}<html><head><meta property="og:image" content="TOKEN"></head>` +
				`<body>{{block "content" .}}{{end}}</body></html>{{end}}`,
		)},
		"templates/thanks.html": {Data: []byte(
			`{{define "content"}}<h1>{{.Data.Path.site}}</h1><p>{{.Data.Query.ref}}</p><i>{{.Data.Global.title}}</i>{{end}}`,
		)},
		"templates/broken.html": {Data: []byte(
			`{{define "content"}}{{.Data.Nope.missing}}{{end}}`,
		)},
	}
}

func TestEngine_RenderCapturesPathAndQuery(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute}, WithGlobalData(map[string]any{"title": "Dusty"}))
	require.NoError(t, err)

	page, err := engine.Render(context.Background(), "thanks", Request{
		Path:  "/thanks/example.com/",
		Query: map[string]string{"ref": "newsletter"},
	})
	require.NoError(t, err)

	require.Equal(t, "/thanks/example.com/", page.URL)
	require.Equal(t, "thanks", page.Data.Route)
	require.Equal(t, "example.com", page.Data.Path["site"])
	require.Equal(t, "newsletter", page.Data.Query["ref"])
	require.Contains(t, page.Content, "<h1>example.com</h1>")
	require.Contains(t, page.Content, "<p>newsletter</p>")
	require.Contains(t, page.Content, "<i>Dusty</i>")
	require.Contains(t, page.Content, `content="TOKEN"`)
}

func TestEngine_RenderEscapesParams(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute})
	require.NoError(t, err)

	page, err := engine.Render(context.Background(), "thanks", Request{Path: "/thanks/%3Cb%3Ex.com/"})
	require.NoError(t, err)
	require.Equal(t, "<b>x.com", page.Data.Path["site"])
	require.Contains(t, page.Content, "&lt;b&gt;x.com")
	require.NotNil(t, page.Data.Query)
}

func TestEngine_RenderUnmatchedPathIsNotFound(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute})
	require.NoError(t, err)

	tests := []string{"/", "/thanks/", "/thanks/a/b/", "/favicon.ico", "/other/example.com/"}
	for _, p := range tests {
		_, err := engine.Render(context.Background(), "thanks", Request{Path: p})
		var renderErr *Error
		require.ErrorAs(t, err, &renderErr, p)
		require.Equal(t, http.StatusNotFound, renderErr.HTTPStatusCode(), p)
	}
}

func TestEngine_RenderUnknownRoute(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute})
	require.NoError(t, err)

	_, err = engine.Render(context.Background(), "missing", Request{Path: "/thanks/x/"})
	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	require.Equal(t, http.StatusInternalServerError, renderErr.HTTPStatusCode())
}

func TestEngine_RenderExecutionFailure(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{
		{Name: "broken", Pattern: "/broken/:id", Template: "broken.html"},
	})
	require.NoError(t, err)

	_, err = engine.Render(context.Background(), "broken", Request{Path: "/broken/1"})
	var renderErr *Error
	require.ErrorAs(t, err, &renderErr)
	require.Equal(t, http.StatusInternalServerError, renderErr.HTTPStatusCode())
	require.NotNil(t, errors.Unwrap(err))
}

func TestEngine_RenderCanceledContext(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Render(ctx, "thanks", Request{Path: "/thanks/example.com/"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_IsServerlessURL(t *testing.T) {
	t.Parallel()

	engine, err := New(testFS(), []Route{thanksRoute})
	require.NoError(t, err)

	require.True(t, engine.IsServerlessURL("/thanks/example.com/"))
	require.True(t, engine.IsServerlessURL("/thanks/example.com"))
	require.False(t, engine.IsServerlessURL("/thanks/"))
	require.False(t, engine.IsServerlessURL("/browser-sync/socket.io/"))
	require.False(t, engine.IsServerlessURL("/favicon.ico"))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fsys   fstest.MapFS
		routes []Route
		want   string
	}{
		{
			name:   "no routes",
			fsys:   testFS(),
			routes: nil,
			want:   "at least one route",
		},
		{
			name:   "missing layouts",
			fsys:   fstest.MapFS{"templates/thanks.html": {Data: []byte(`x`)}},
			routes: []Route{thanksRoute},
			want:   "parse layouts",
		},
		{
			name: "layout without layout template",
			fsys: fstest.MapFS{
				"templates/layouts/base.html": {Data: []byte(`{{define "other"}}{{end}}`)},
				"templates/thanks.html":       {Data: []byte(`x`)},
			},
			routes: []Route{thanksRoute},
			want:   `"layout"`,
		},
		{
			name:   "missing page template",
			fsys:   testFS(),
			routes: []Route{{Name: "gone", Pattern: "/gone/", Template: "gone.html"}},
			want:   "parse template",
		},
		{
			name:   "relative pattern",
			fsys:   testFS(),
			routes: []Route{{Name: "thanks", Pattern: "thanks/:site", Template: "thanks.html"}},
			want:   "must start with /",
		},
		{
			name:   "duplicate parameter",
			fsys:   testFS(),
			routes: []Route{{Name: "thanks", Pattern: "/:a/:a", Template: "thanks.html"}},
			want:   "duplicate parameter",
		},
		{
			name:   "duplicate route",
			fsys:   testFS(),
			routes: []Route{thanksRoute, thanksRoute},
			want:   "duplicate route",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.fsys, tt.routes)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEngine_EmbeddedThanksTemplate(t *testing.T) {
	t.Parallel()

	engine, err := New(web.Templates, []Route{thanksRoute}, WithGlobalData(map[string]any{
		"title": "Dusty Domains",
		"url":   "https://dustydomains.netlify.app",
	}))
	require.NoError(t, err)

	page, err := engine.Render(context.Background(), "thanks", Request{
		Path:  "/thanks/example.com/",
		Query: map[string]string{"name": "Ada"},
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Content))
	require.NoError(t, err)

	require.Equal(t, "Thanks for sharing example.com | Dusty Domains", doc.Find("title").Text())
	ogImage, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	require.True(t, ok)
	require.Equal(t, "DUSTY_DOMAINS_SCREENSHOT_URL", ogImage)
	src, ok := doc.Find("img.screenshot").Attr("src")
	require.True(t, ok)
	require.Equal(t, "DUSTY_DOMAINS_SCREENSHOT_URL", src)
	require.Equal(t, "example.com", doc.Find("span.site").Text())
	require.Equal(t, "Submitted by Ada", doc.Find("p.submitter").Text())
	require.Equal(t, "https://dustydomains.netlify.app/submit/", doc.Find("main a").AttrOr("href", ""))
}
