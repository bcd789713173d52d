package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"civicreport/lifecycle"
	"civicreport/models"
)

// ErrNotFound is returned when a report id does not exist in the store.
var ErrNotFound = errors.New("report not found")

// ReportStore is the persistence contract shared by the MySQL and flat-file
// backends. All writes go through it; there is no other shared mutable state.
type ReportStore interface {
	ListReports(ctx context.Context) ([]models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	CreateReport(ctx context.Context, r *models.Report) error
	UpdateReport(ctx context.Context, id string, upd *models.UpdateReportRequest) (*models.Report, error)
	SubscribeToken(ctx context.Context, token string) (int, error)
	ReportsInViewport(ctx context.Context, vp models.Viewport) ([]models.Report, error)
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewID returns a millisecond-timestamp report id. Two calls within the same
// millisecond bump the counter so ids stay unique and non-decreasing.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return strconv.FormatInt(id, 10)
}

// NewReport builds a Report from the client-settable creation fields only.
// id, status and createdAt are server-assigned and cannot be overridden.
func NewReport(req *models.CreateReportRequest) *models.Report {
	title := req.Title
	if title == "" {
		title = req.Type
	}
	if title == "" {
		title = "Untitled"
	}
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}
	return &models.Report{
		ID:          NewID(),
		Title:       title,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Address:     req.Address,
		Priority:    priority,
		Status:      lifecycle.StatusNew,
		CreatedAt:   time.Now().UTC(),
	}
}

// ApplyUpdate copies the allow-listed fields of upd onto r and stamps
// updatedAt. Fields absent from upd are left unchanged.
func ApplyUpdate(r *models.Report, upd *models.UpdateReportRequest) {
	if upd.Status != nil {
		r.Status = *upd.Status
	}
	if upd.Department != nil {
		r.Department = *upd.Department
	}
	if upd.Assignee != nil {
		r.Assignee = *upd.Assignee
	}
	if upd.Priority != nil {
		r.Priority = *upd.Priority
	}
	if upd.Title != nil {
		r.Title = *upd.Title
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	now := time.Now().UTC()
	r.UpdatedAt = &now
}
