// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/JakeFAU/dusty-domains/internal/screenshot"
)

// SubmissionStore keeps submissions in insertion order.
type SubmissionStore struct {
	mu      sync.RWMutex
	records []screenshot.Record
}

// NewSubmissionStore constructs a SubmissionStore seeded with records.
func NewSubmissionStore(records ...screenshot.Record) *SubmissionStore {
	s := &SubmissionStore{}
	s.records = append(s.records, records...)
	return s
}

// Put appends a submission.
func (s *SubmissionStore) Put(_ context.Context, rec screenshot.Record) error {
	if rec.URL == "" {
		return errors.New("record url is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// FindBySite returns the earliest submission whose URL contains site.
func (s *SubmissionStore) FindBySite(ctx context.Context, site string) (screenshot.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return screenshot.Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if strings.Contains(rec.URL, site) {
			return rec, true, nil
		}
	}
	return screenshot.Record{}, false, nil
}

// Close is a no-op.
func (s *SubmissionStore) Close() error {
	return nil
}
