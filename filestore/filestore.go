// Package filestore is the flat-file storage backend: one JSON document
// holding every report and device token, rewritten whole on each mutation.
// It keeps the original deployment's data layout; all writes are serialized
// through a mutex so concurrent requests cannot lose updates.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"civicreport/models"
	"civicreport/store"

	"github.com/apex/log"
)

type document struct {
	Reports []models.Report `json:"reports"`
	Tokens  []string        `json:"tokens"`
}

// FileStore implements store.ReportStore on top of a single JSON file.
type FileStore struct {
	path string
	mu   chan struct{} // capacity-1 semaphore, the single-owner write queue
}

// New creates a file store backed by path. The file is created on first
// write; a missing or unreadable file reads as an empty store.
func New(path string) *FileStore {
	s := &FileStore{
		path: path,
		mu:   make(chan struct{}, 1),
	}
	return s
}

func (s *FileStore) lock(ctx context.Context) error {
	select {
	case s.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *FileStore) unlock() {
	<-s.mu
}

func (s *FileStore) read() *document {
	doc := &document{Reports: []models.Report{}, Tokens: []string{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Could not read store file %s, treating as empty: %v", s.path, err)
		}
		return doc
	}
	if err := json.Unmarshal(data, doc); err != nil {
		log.Warnf("Store file %s is corrupt, treating as empty: %v", s.path, err)
		return &document{Reports: []models.Report{}, Tokens: []string{}}
	}
	if doc.Reports == nil {
		doc.Reports = []models.Report{}
	}
	if doc.Tokens == nil {
		doc.Tokens = []string{}
	}
	return doc
}

func (s *FileStore) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// ListReports returns all reports in insertion order.
func (s *FileStore) ListReports(ctx context.Context) ([]models.Report, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.unlock()
	return s.read().Reports, nil
}

// GetReport returns a single report by id.
func (s *FileStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.unlock()
	doc := s.read()
	for i := range doc.Reports {
		if doc.Reports[i].ID == id {
			r := doc.Reports[i]
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

// CreateReport appends a fully built report to the document.
func (s *FileStore) CreateReport(ctx context.Context, r *models.Report) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()
	doc := s.read()
	doc.Reports = append(doc.Reports, *r)
	return s.write(doc)
}

// UpdateReport applies the allow-listed fields present in upd and stamps
// updatedAt.
func (s *FileStore) UpdateReport(ctx context.Context, id string, upd *models.UpdateReportRequest) (*models.Report, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.unlock()
	doc := s.read()
	for i := range doc.Reports {
		if doc.Reports[i].ID != id {
			continue
		}
		store.ApplyUpdate(&doc.Reports[i], upd)
		if err := s.write(doc); err != nil {
			return nil, err
		}
		r := doc.Reports[i]
		return &r, nil
	}
	return nil, store.ErrNotFound
}

// SubscribeToken registers a device token, deduplicating by value.
func (s *FileStore) SubscribeToken(ctx context.Context, token string) (int, error) {
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.unlock()
	doc := s.read()
	for _, t := range doc.Tokens {
		if t == token {
			return len(doc.Tokens), nil
		}
	}
	doc.Tokens = append(doc.Tokens, token)
	if err := s.write(doc); err != nil {
		return 0, err
	}
	return len(doc.Tokens), nil
}

// ReportsInViewport returns reports whose coordinates fall inside vp.
func (s *FileStore) ReportsInViewport(ctx context.Context, vp models.Viewport) ([]models.Report, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.unlock()
	matches := []models.Report{}
	for _, r := range s.read().Reports {
		if r.Location == nil {
			continue
		}
		if r.Location.Latitude > vp.LatMin && r.Location.Longitude > vp.LonMin &&
			r.Location.Latitude <= vp.LatMax && r.Location.Longitude <= vp.LonMax {
			matches = append(matches, r)
		}
	}
	return matches, nil
}
