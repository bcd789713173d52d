package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"civicreport/lifecycle"
	"civicreport/models"
	"civicreport/store"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data.json"))
}

func TestCreateAndListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := store.NewReport(&models.CreateReportRequest{Type: "Garbage"})
	second := store.NewReport(&models.CreateReportRequest{Type: "Pothole"})
	if err := s.CreateReport(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateReport(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	reports, err := s.ListReports(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != first.ID || reports[1].ID != second.ID {
		t.Errorf("insertion order not preserved: %s, %s", reports[0].ID, reports[1].ID)
	}
}

func TestGetReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := store.NewReport(&models.CreateReportRequest{Type: "Noise"})
	if err := s.CreateReport(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != r.ID || got.Type != "Noise" {
		t.Errorf("unexpected report: %+v", got)
	}

	if _, err := s.GetReport(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReportPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	ctx := context.Background()

	s := New(path)
	r := store.NewReport(&models.CreateReportRequest{Type: "Pothole"})
	if err := s.CreateReport(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	status := lifecycle.StatusResolved
	updated, err := s.UpdateReport(ctx, r.ID, &models.UpdateReportRequest{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != lifecycle.StatusResolved {
		t.Errorf("status not applied: %q", updated.Status)
	}
	if updated.UpdatedAt == nil || updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("updatedAt not stamped after createdAt: %v", updated.UpdatedAt)
	}

	// A fresh store over the same file sees the change.
	reopened := New(path)
	got, err := reopened.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Status != lifecycle.StatusResolved {
		t.Errorf("update not durable, got %q", got.Status)
	}
}

func TestUpdateReportNotFound(t *testing.T) {
	s := newTestStore(t)
	status := lifecycle.StatusRouted
	if _, err := s.UpdateReport(context.Background(), "missing",
		&models.UpdateReportRequest{Status: &status}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json at all"), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	reports, err := s.ListReports(context.Background())
	if err != nil {
		t.Fatalf("list over corrupt file: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected empty store, got %d reports", len(reports))
	}

	// A write recovers the file.
	if err := s.CreateReport(context.Background(),
		store.NewReport(&models.CreateReportRequest{Type: "Garbage"})); err != nil {
		t.Fatalf("create after corruption: %v", err)
	}
	reports, err = s.ListReports(context.Background())
	if err != nil || len(reports) != 1 {
		t.Errorf("expected 1 report after recovery, got %d (%v)", len(reports), err)
	}
}

func TestSubscribeTokenDedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SubscribeToken(ctx, "device-a")
	if err != nil || n != 1 {
		t.Fatalf("first subscribe: n=%d err=%v", n, err)
	}
	n, err = s.SubscribeToken(ctx, "device-b")
	if err != nil || n != 2 {
		t.Fatalf("second subscribe: n=%d err=%v", n, err)
	}
	n, err = s.SubscribeToken(ctx, "device-a")
	if err != nil || n != 2 {
		t.Errorf("duplicate subscribe should not grow the set: n=%d err=%v", n, err)
	}
}

func TestReportsInViewport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inside := store.NewReport(&models.CreateReportRequest{
		Type:     "Garbage",
		Location: &models.Location{Latitude: 5, Longitude: 5},
	})
	outside := store.NewReport(&models.CreateReportRequest{
		Type:     "Garbage",
		Location: &models.Location{Latitude: 50, Longitude: 50},
	})
	noLocation := store.NewReport(&models.CreateReportRequest{Type: "Garbage"})
	for _, r := range []*models.Report{inside, outside, noLocation} {
		if err := s.CreateReport(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := s.ReportsInViewport(ctx, models.Viewport{
		LatMin: 0, LonMin: 0, LatMax: 10, LonMax: 10,
	})
	if err != nil {
		t.Fatalf("viewport: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Errorf("expected only the inside report, got %+v", got)
	}
}
