package observation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viverecare/vivere/internal/platform/db"
	"github.com/viverecare/vivere/internal/platform/middleware"
)

// Detector is invoked after an observation is durably recorded. It must never
// return an error: detection is a best-effort side effect of a successful
// write and cannot fail the recording request.
type Detector interface {
	OnObservationCreated(ctx context.Context, tenantID string, o *Observation, recordedByUserID string)
}

type Handler struct {
	svc      *Service
	detector Detector
}

func NewHandler(svc *Service, detector Detector) *Handler {
	return &Handler{svc: svc, detector: detector}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/observations", h.Create)
	api.GET("/observations/:id", h.Get)
	api.GET("/observations", h.List)
}

type createRequest struct {
	ResidentID uuid.UUID              `json:"resident_id"`
	Category   Category               `json:"category"`
	Date       string                 `json:"date"`
	Time       *string                `json:"time"`
	Payload    map[string]interface{} `json:"payload"`
	RecordedBy string                 `json:"recorded_by"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)
	recordedBy := req.RecordedBy
	if recordedBy == "" {
		recordedBy = middleware.UserNameFromContext(ctx)
	}

	o := &Observation{
		ResidentID: req.ResidentID,
		Category:   req.Category,
		Date:       req.Date,
		Time:       req.Time,
		Payload:    req.Payload,
		RecordedBy: recordedBy,
	}
	if uid, err := uuid.Parse(userID); err == nil {
		o.AuthorID = uid
	}

	if err := h.svc.Create(ctx, o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.detector != nil {
		h.detector.OnObservationCreated(ctx, db.TenantFromContext(ctx), o, userID)
	}

	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "observation not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) List(c echo.Context) error {
	residentID, err := uuid.Parse(c.QueryParam("resident_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "resident_id query parameter is required")
	}
	category := Category(c.QueryParam("category"))
	if !ValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	dateFrom := c.QueryParam("date_from")
	dateTo := c.QueryParam("date_to")
	if dateFrom == "" || dateTo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date_from and date_to are required")
	}

	items, err := h.svc.ListByResidentAndCategory(c.Request().Context(), residentID, category, dateFrom, dateTo)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
