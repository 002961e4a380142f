package admin

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
	// One endpoint multiplexed by action, mirroring the dashboard's admin
	// panel RPC shape.
	api.POST("/admin/users", h.Users)
}

type usersRequest struct {
	Action    string  `json:"action"`
	UserID    string  `json:"user_id,omitempty"`
	Email     string  `json:"email,omitempty"`
	Name      string  `json:"name,omitempty"`
	Role      string  `json:"role,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
}

func (h *Handler) Users(c echo.Context) error {
	ctx := c.Request().Context()
	if auth.UserIDFromContext(ctx) == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if !auth.HasRole(auth.RolesFromContext(ctx), auth.RoleAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "admin role required")
	}

	var req usersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hospitalID := db.HospitalFromContext(ctx)

	switch req.Action {
	case "list_users":
		users, err := h.svc.ListUsers(ctx, hospitalID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"users": users})

	case "create_user":
		u := &HospitalUser{
			HospitalID: hospitalID,
			Email:      req.Email,
			Name:       req.Name,
			Role:       req.Role,
			Specialty:  req.Specialty,
		}
		if err := h.svc.CreateUser(ctx, u); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusCreated, u)

	case "update_user":
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		u, err := h.svc.UpdateUser(ctx, id, req.Name, req.Role, req.Specialty)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, u)

	case "deactivate_user":
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		u, err := h.svc.DeactivateUser(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return c.JSON(http.StatusOK, u)

	case "resend_invite":
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		if err := h.svc.ResendInvite(ctx, id); err != nil {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]bool{"sent": true})

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action: "+req.Action)
	}
}
