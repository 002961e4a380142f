package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/audit", h.Record)
	api.GET("/audit", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) requestInfo(c echo.Context) (RequestInfo, error) {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return RequestInfo{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return RequestInfo{
		UserID:    uid,
		SessionID: auth.SessionIDFromContext(c.Request().Context()),
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, nil
}

// Record accepts both immediate action events and debounced view events; the
// split is on action_type.
func (h *Handler) Record(c echo.Context) error {
	req, err := h.requestInfo(c)
	if err != nil {
		return err
	}
	var entry Entry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if entry.ActionType == "view" {
		if err := h.svc.RecordView(entry, req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.NoContent(http.StatusAccepted)
	}
	if err := h.svc.RecordAction(c.Request().Context(), entry, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := Filter{ActionType: c.QueryParam("action_type")}
	if uid := c.QueryParam("user_id"); uid != "" {
		id, err := uuid.Parse(uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		filter.UserID = &id
	}
	if pid := c.QueryParam("patient_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		filter.PatientID = &id
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
