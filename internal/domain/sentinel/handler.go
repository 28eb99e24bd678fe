package sentinel

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sentinel-events", h.List)
	api.GET("/sentinel-events/:id", h.Get)
	api.PATCH("/sentinel-events/:id", h.Update)
}

func (h *Handler) List(c echo.Context) error {
	var filter ListFilter
	if raw := c.QueryParam("status"); raw != "" {
		status := Status(raw)
		if !ValidStatus(status) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = &status
	}
	items, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "sentinel event not found")
	}
	return c.JSON(http.StatusOK, t)
}

type updateRequest struct {
	Status           Status `json:"status"`
	Protocol         string `json:"protocol"`
	ResponsibleParty string `json:"responsible_party"`
	Notes            string `json:"notes"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	var t *Tracking
	switch req.Status {
	case StatusSent:
		t, err = h.svc.MarkSent(ctx, id, req.Protocol, req.ResponsibleParty, req.Notes)
	case StatusConfirmed:
		t, err = h.svc.MarkConfirmed(ctx, id, req.Notes)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "status must be SENT or CONFIRMED")
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "sentinel event not found")
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, t)
}
