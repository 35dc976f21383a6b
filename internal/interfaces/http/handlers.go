package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/purchase-bot/internal/application/service"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
	"github.com/garyjia/purchase-bot/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	lifecycle service.LifecycleService
	health    HealthChecker
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(lifecycle service.LifecycleService, health HealthChecker, logger Logger) *Handlers {
	return &Handlers{
		lifecycle: lifecycle,
		health:    health,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Timestamp string `json:"timestamp"`
}

// RequestResponse represents a purchase request in API responses
type RequestResponse struct {
	ID            int64  `json:"id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Text          string `json:"text"`
	Status        string `json:"status"`
	ApproverName  string `json:"approver_name,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Store:     "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.health.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Health check failed", "error", err)
		resp.Status = "degraded"
		resp.Store = err.Error()
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: resp, Error: "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp})
}

// ListRequests handles GET /api/v1/requests?status=
func (h *Handlers) ListRequests(c *gin.Context) {
	requests, ok := h.list(c)
	if !ok {
		return
	}

	out := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// GetRequest handles GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request ID"})
		return
	}

	req, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to get request", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponse(req)})
}

// ExportRequests handles GET /api/v1/requests/export.xlsx?status=
func (h *Handlers) ExportRequests(c *gin.Context) {
	requests, ok := h.list(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteExcel(&buf, requests); err != nil {
		h.writeError(c, "Failed to export requests", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="purchase-requests.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// list reads the status query parameter; "all" or empty selects every bucket
func (h *Handlers) list(c *gin.Context) ([]*entity.PurchaseRequest, bool) {
	var status entity.Status
	if v := c.Query("status"); v != "" && v != "all" {
		parsed, err := entity.ParseStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return nil, false
		}
		status = parsed
	}

	requests, err := h.lifecycle.List(c.Request.Context(), status)
	if err != nil {
		h.writeError(c, "Failed to list requests", err)
		return nil, false
	}
	return requests, true
}

func (h *Handlers) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "request not found"})
	case errors.Is(err, entity.ErrStoreUnavailable):
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "store unavailable"})
	default:
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func toRequestResponse(req *entity.PurchaseRequest) RequestResponse {
	return RequestResponse{
		ID:            req.ID,
		RequesterID:   req.RequesterID,
		RequesterName: req.RequesterName,
		Text:          req.Text,
		Status:        req.Status.String(),
		ApproverName:  req.ApproverName,
	}
}
