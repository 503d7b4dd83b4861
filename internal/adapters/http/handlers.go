package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
	"biosync/internal/core/ports"
	"biosync/pkg/utils"
)

type Handler struct {
	syncSvc  ports.SyncService
	reader   ports.AttendanceReader
	statsSvc ports.StatsService
	protocol string
	flight   singleflight.Group
	log      *slog.Logger
}

// NewHandler constructs a handler. reader and stats may be nil, in which
// case their endpoints answer 404.
func NewHandler(svc ports.SyncService, reader ports.AttendanceReader, stats ports.StatsService, protocol string) *Handler {
	return &Handler{
		syncSvc:  svc,
		reader:   reader,
		statsSvc: stats,
		protocol: protocol,
		log:      slog.Default().With("component", "http"),
	}
}

// GetSync godoc
// @Summary Run a sync against the device
// @Description Connects to the device, reconciles its log, exports to the configured sinks and returns the reconciled records. Concurrent calls share one run.
// @Tags sync
// @Produce json
// @Success 200 {object} SyncResponse
// @Failure 500 {object} SyncResponse
// @Router /api/sync [get]
func (h *Handler) GetSync(c *gin.Context) {
	// The run outlives a disconnecting caller so the device is always released.
	ctx := context.WithoutCancel(c.Request.Context())

	v, err, shared := h.flight.Do(h.syncSvc.DeviceID(), func() (any, error) {
		return h.syncSvc.Sync(ctx)
	})
	if shared {
		h.log.Debug("sync request joined a running sync", "device", h.syncSvc.DeviceID())
	}
	if err != nil {
		h.log.Error("sync failed", "device", h.syncSvc.DeviceID(), "error", err)
		c.JSON(http.StatusInternalServerError, SyncResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, newSyncResponse(v.(*domain.SyncResult)))
}

// GetHealth godoc
// @Summary Service health
// @Tags sync
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Protocol: h.protocol,
		Mode:     "READ-ONLY",
		Device:   h.syncSvc.DeviceID(),
		Safety:   "Device data remains untouched",
	})
}

// GetStats godoc
// @Summary Sync run statistics
// @Description Runs, failures and average duration of the syncs this process performed.
// @Tags sync
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	if h.statsSvc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "no sync runs recorded"})
		return
	}

	stats, err := h.statsSvc.GetStats(h.syncSvc.DeviceID())
	if err != nil {
		if errors.Is(err, coreerrors.ErrNoRuns) {
			c.JSON(http.StatusNotFound, ErrorResponse{Msg: "no sync runs recorded"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Msg: "internal error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Device:      h.syncSvc.DeviceID(),
		Runs:        stats.Runs,
		Failures:    stats.Failures,
		Partial:     stats.Partial,
		SuccessRate: stats.SuccessRate,
		AvgDuration: stats.AvgDuration,
		LastRun:     stats.LastRun,
		LastRunID:   stats.LastRunID,
		LastOutcome: stats.LastOutcome,
	})
}

// GetEmployees godoc
// @Summary List stored employees
// @Description Employees written by the last sync, ordered by id.
// @Tags employees
// @Produce json
// @Success 200 {object} EmployeesResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/employees [get]
func (h *Handler) GetEmployees(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "no stored data"})
		return
	}

	employees, err := h.reader.Employees()
	if err != nil {
		h.storedDataError(c, err)
		return
	}
	resp := EmployeesResponse{Employees: employees}
	if meta, err := h.reader.Metadata(); err == nil {
		resp.LastSync = meta
	}
	c.JSON(http.StatusOK, resp)
}

// GetAttendance godoc
// @Summary Stored attendance of one employee
// @Tags employees
// @Produce json
// @Param employee_id path string true "Employee ID"
// @Success 200 {object} AttendanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/employees/{employee_id}/attendance [get]
func (h *Handler) GetAttendance(c *gin.Context) {
	employeeID := c.Param("employee_id")

	if !utils.IsEmployeeID(employeeID) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: "Invalid employee ID"})
		return
	}
	if h.reader == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "no stored data"})
		return
	}

	emp, err := h.reader.Attendance(employeeID)
	if err != nil {
		h.storedDataError(c, err)
		return
	}

	c.JSON(http.StatusOK, AttendanceResponse{
		Profile:    emp.Profile,
		Attendance: emp.Months,
		CheckIns:   emp.CheckIns,
		CheckOuts:  emp.CheckOuts,
		Unknown:    emp.Unknown,
	})
}

func (h *Handler) storedDataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, coreerrors.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "employee not found"})
	case errors.Is(err, coreerrors.ErrNoData):
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "no stored data"})
	default:
		h.log.Error("read stored data", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Msg: "internal error"})
	}
}
