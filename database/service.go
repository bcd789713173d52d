package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"civicreport/config"
	"civicreport/models"
	"civicreport/store"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// ReportService handles all report persistence against MySQL. Every row
// change is a single-row atomic statement, which is what replaces the
// original whole-document read/rewrite cycle.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new report service
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// Connect opens a MySQL connection using the service configuration.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetConnMaxLifetime(time.Minute * 3)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	log.Infof("Database connected to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}

const reportColumns = "id, title, description, type, latitude, longitude, address, priority, status, department, assignee, image, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r         models.Report
		desc      sql.NullString
		lat, lon  sql.NullFloat64
		updatedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.Title, &desc, &r.Type, &lat, &lon, &r.Address,
		&r.Priority, &r.Status, &r.Department, &r.Assignee, &r.Image,
		&r.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Description = desc.String
	if lat.Valid && lon.Valid {
		r.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		r.UpdatedAt = &t
	}
	return &r, nil
}

// ListReports returns all reports in insertion order.
func (s *ReportService) ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

// GetReport returns a single report by id.
func (s *ReportService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return r, nil
}

// CreateReport inserts a fully built report row.
func (s *ReportService) CreateReport(ctx context.Context, r *models.Report) error {
	var lat, lon interface{}
	if r.Location != nil {
		lat, lon = r.Location.Latitude, r.Location.Longitude
	}
	_, err := s.db.ExecContext(ctx, `INSERT
		INTO reports (id, title, description, type, latitude, longitude, address, priority, status, department, assignee, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Description, r.Type, lat, lon, r.Address,
		r.Priority, r.Status, r.Department, r.Assignee, r.Image, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}
	return nil
}

// UpdateReport applies the allow-listed fields present in upd and stamps
// updated_at. Absent fields are left untouched.
func (s *ReportService) UpdateReport(ctx context.Context, id string, upd *models.UpdateReportRequest) (*models.Report, error) {
	// The row must exist even when nothing but updated_at changes.
	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM reports WHERE id = ?", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check report %s: %w", id, err)
	}

	sets := []string{}
	args := []interface{}{}
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("status", upd.Status)
	add("department", upd.Department)
	add("assignee", upd.Assignee)
	add("priority", upd.Priority)
	add("title", upd.Title)
	add("description", upd.Description)
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := "UPDATE reports SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update report %s: %w", id, err)
	}

	return s.GetReport(ctx, id)
}

// SubscribeToken registers a device token, deduplicating by value, and
// returns the resulting token count.
func (s *ReportService) SubscribeToken(ctx context.Context, token string) (int, error) {
	_, err := s.db.ExecContext(ctx, `INSERT
		INTO device_tokens (token) VALUES (?)
		ON DUPLICATE KEY UPDATE token = token`, token)
	if err != nil {
		return 0, fmt.Errorf("failed to save device token: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM device_tokens").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count device tokens: %w", err)
	}
	return count, nil
}

// ReportsInViewport returns reports whose coordinates fall inside vp.
func (s *ReportService) ReportsInViewport(ctx context.Context, vp models.Viewport) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE latitude > ? AND longitude > ?
			AND latitude <= ? AND longitude <= ?
		ORDER BY seq ASC`,
		vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewport reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating viewport reports: %w", err)
	}
	return reports, nil
}
