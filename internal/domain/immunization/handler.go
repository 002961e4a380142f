package immunization

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/internal/platform/db"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse, auth.RoleViewer))
	readGroup.GET("/patients/:patientID/immunizations", h.ListByPatient)

	careGroup := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse))
	careGroup.POST("/patients/:patientID/immunizations", h.Record)
	careGroup.POST("/immunizations/:id/entered-in-error", h.MarkEnteredInError)
}

func (h *Handler) Record(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var i Immunization
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.PatientID = pid
	if i.HospitalID == "" {
		i.HospitalID = db.HospitalFromContext(c.Request().Context())
	}
	if i.AdministeredBy == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			i.AdministeredBy = uid
		}
	}
	if err := h.svc.Record(c.Request().Context(), &i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), pid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkEnteredInError(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i, err := h.svc.MarkEnteredInError(c.Request().Context(), id, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "immunization not found")
	}
	return c.JSON(http.StatusOK, i)
}
