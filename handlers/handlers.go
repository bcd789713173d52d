package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"civicreport/config"
	"civicreport/lifecycle"
	"civicreport/models"
	"civicreport/routing"
	"civicreport/storage"
	"civicreport/store"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	store store.ReportStore
	media storage.MediaStore
	cfg   *config.Config
}

// New creates a new handlers instance
func New(st store.ReportStore, media storage.MediaStore, cfg *config.Config) *Handlers {
	return &Handlers{
		store: st,
		media: media,
		cfg:   cfg,
	}
}

// ListReports returns every report, insertion order, no pagination.
func (h *Handlers) ListReports(c *gin.Context) {
	reports, err := h.store.ListReports(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// CreateReport accepts a JSON or multipart report submission. A multipart
// image field is relocated into media storage and referenced from the
// returned report; an upload failure is logged and the submission still
// succeeds with no media reference.
func (h *Handlers) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")

	if isMultipart {
		req.Title = c.PostForm("title")
		req.Description = c.PostForm("description")
		req.Type = c.PostForm("type")
		req.Address = c.PostForm("address")
		req.Priority = c.PostForm("priority")
		req.Location = parseLocationField(c.PostForm("location"))
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
	}

	report := store.NewReport(&req)

	if isMultipart {
		if file, err := c.FormFile("image"); err == nil && file != nil {
			report.Image = h.saveUpload(file)
		}
	}

	if err := h.store.CreateReport(c.Request.Context(), report); err != nil {
		log.Errorf("Failed to create report: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create report"})
		return
	}

	log.Infof("Created report %s (type %q)", report.ID, report.Type)
	c.JSON(http.StatusCreated, report)
}

// saveUpload relocates an uploaded image into media storage. A failure is
// logged and reported as an empty reference so the submission still succeeds.
func (h *Handlers) saveUpload(file *multipart.FileHeader) string {
	src, err := file.Open()
	if err != nil {
		log.Errorf("Failed to open uploaded image: %v", err)
		return ""
	}
	defer src.Close()

	ref, err := h.media.Save(file.Filename, src)
	if err != nil {
		log.Errorf("Failed to store uploaded image: %v", err)
		return ""
	}
	return ref
}

// The mobile client sends the multipart location field as a JSON string.
func parseLocationField(raw string) *models.Location {
	if raw == "" || raw == "{}" || raw == "null" {
		return nil
	}
	var loc models.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		log.Warnf("Ignoring malformed location field %q: %v", raw, err)
		return nil
	}
	return &loc
}

// GetReport returns a single report by id.
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
			return
		}
		log.Errorf("Failed to get report: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport applies a partial update. Only allow-listed fields are
// applied; unknown keys in the body are ignored. With strict lifecycle
// enabled a backwards status move is rejected with 409.
func (h *Handlers) UpdateReport(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if h.cfg.StrictLifecycle && req.Status != nil {
		current, err := h.store.GetReport(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
				return
			}
			log.Errorf("Failed to get report for update: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update report"})
			return
		}
		if err := lifecycle.Validate(current.Status, *req.Status); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
	}

	report, err := h.store.UpdateReport(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
			return
		}
		log.Errorf("Failed to update report %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// RouteReport classifies the report's issue type into a department and moves
// the report to routed. Routing an already routed report is idempotent.
func (h *Handlers) RouteReport(c *gin.Context) {
	id := c.Param("id")

	report, err := h.store.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
			return
		}
		log.Errorf("Failed to get report for routing: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to route report"})
		return
	}

	department := routing.Classify(report.Type)

	if h.cfg.StrictLifecycle {
		if err := lifecycle.Validate(report.Status, lifecycle.StatusRouted); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
			return
		}
	}

	status := lifecycle.StatusRouted
	updated, err := h.store.UpdateReport(c.Request.Context(), id, &models.UpdateReportRequest{
		Status:     &status,
		Department: &department,
	})
	if err != nil {
		log.Errorf("Failed to route report %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to route report"})
		return
	}

	log.Infof("Routed report %s to %s", id, department)
	c.JSON(http.StatusOK, updated)
}

// Subscribe registers a push notification device token, deduplicated by
// value.
func (h *Handlers) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "token required"})
		return
	}

	count, err := h.store.SubscribeToken(c.Request.Context(), req.Token)
	if err != nil {
		log.Errorf("Failed to subscribe token: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to subscribe"})
		return
	}
	c.JSON(http.StatusOK, models.SubscribeResponse{OK: true, Tokens: count})
}

// IssueTypes returns the fixed suggestion set the client offers for the
// type field.
func (h *Handlers) IssueTypes(c *gin.Context) {
	c.JSON(http.StatusOK, routing.SuggestedIssueTypes)
}

// HealthCheck is the liveness endpoint.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"ts": time.Now().UTC().Format(time.RFC3339),
	})
}
