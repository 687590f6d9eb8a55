// Package screenshot resolves the screenshot URL for a submitted site.
package screenshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/metrics"
)

// DefaultURL is served when no submission matches or the match has no screenshot yet.
const DefaultURL = "https://res.cloudinary.com/netlify/image/upload/f_auto,q_auto/dusty-domains/default-card.jpg"

// Record is a submission as stored in the record store.
// An empty ScreenshotURL means the field is absent.
type Record struct {
	URL           string
	ScreenshotURL string
}

// Store looks up submissions.
type Store interface {
	// FindBySite returns the first record whose URL contains site.
	FindBySite(ctx context.Context, site string) (Record, bool, error)
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithDefaultURL overrides the fallback image URL. Empty values are ignored.
func WithDefaultURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.defaultURL = u
		}
	}
}

// WithLogger attaches a logger; the default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps a site to the screenshot URL shown on its thanks page.
type Resolver struct {
	store      Store
	defaultURL string
	logger     *zap.Logger
}

// NewResolver builds a Resolver backed by store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		defaultURL: DefaultURL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the screenshot URL for site, or the default URL when none is recorded.
// Store failures are returned as *LookupError and are never retried.
func (r *Resolver) Resolve(ctx context.Context, site string) (string, error) {
	start := time.Now()
	rec, found, err := r.store.FindBySite(ctx, site)
	if err != nil {
		metrics.ObserveScreenshotLookup(metrics.LookupError, time.Since(start))
		return "", &LookupError{Site: site, Err: err}
	}
	if !found || rec.ScreenshotURL == "" {
		metrics.ObserveScreenshotLookup(metrics.LookupDefault, time.Since(start))
		r.logger.Debug("no screenshot recorded, using default",
			zap.String("site", site),
			zap.Bool("record_found", found),
		)
		return r.defaultURL, nil
	}
	metrics.ObserveScreenshotLookup(metrics.LookupFound, time.Since(start))
	r.logger.Debug("screenshot resolved",
		zap.String("site", site),
		zap.String("record_url", rec.URL),
	)
	return rec.ScreenshotURL, nil
}
