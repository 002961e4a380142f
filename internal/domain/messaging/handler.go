package messaging

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/internal/platform/db"
	"github.com/virtualis/alis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse, auth.RoleViewer))

	g.POST("/messages", h.SendDM)
	g.GET("/messages/:userID", h.ListConversation)
	g.POST("/messages/:userID/read", h.MarkRead)

	g.POST("/channels", h.CreateChannel)
	g.GET("/channels", h.ListChannels)
	g.POST("/channels/:id/join", h.JoinChannel)
	g.POST("/channels/:id/messages", h.PostMessage)
	g.GET("/channels/:id/messages", h.ListMessages)

	g.POST("/consults", h.CreateConsult)
	g.GET("/consults", h.ListConsults)
	g.POST("/consults/:id/accept", h.AcceptConsult)
	g.POST("/consults/:id/decline", h.DeclineConsult)
	g.POST("/consults/:id/complete", h.CompleteConsult)

	g.POST("/presence/heartbeat", h.Heartbeat)
	g.GET("/presence", h.PresenceSnapshot)
}

func (h *Handler) currentUser(c echo.Context) (uuid.UUID, error) {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return uid, nil
}

func (h *Handler) SendDM(c echo.Context) error {
	var m DirectMessage
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	m.SenderID = uid
	if m.HospitalID == "" {
		m.HospitalID = db.HospitalFromContext(c.Request().Context())
	}
	if err := h.svc.SendDM(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListConversation(c echo.Context) error {
	other, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListConversation(c.Request().Context(), uid, other, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkRead(c echo.Context) error {
	sender, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if err := h.svc.MarkConversationRead(c.Request().Context(), uid, sender); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateChannel(c echo.Context) error {
	var ch TeamChannel
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	ch.CreatedBy = uid
	if ch.HospitalID == "" {
		ch.HospitalID = db.HospitalFromContext(c.Request().Context())
	}
	if err := h.svc.CreateChannel(c.Request().Context(), &ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *Handler) ListChannels(c echo.Context) error {
	hospitalID := db.HospitalFromContext(c.Request().Context())
	items, err := h.svc.ListChannels(c.Request().Context(), hospitalID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) JoinChannel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	if err := h.svc.JoinChannel(c.Request().Context(), id, uid); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "channel not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PostMessage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m ChannelMessage
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	m.ChannelID = id
	m.SenderID = uid
	if err := h.svc.PostMessage(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMessages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMessages(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateConsult(c echo.Context) error {
	var cr ConsultRequest
	if err := c.Bind(&cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	cr.RequesterID = uid
	if cr.HospitalID == "" {
		cr.HospitalID = db.HospitalFromContext(c.Request().Context())
	}
	if err := h.svc.CreateConsult(c.Request().Context(), &cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *Handler) ListConsults(c echo.Context) error {
	hospitalID := db.HospitalFromContext(c.Request().Context())
	items, err := h.svc.ListConsults(c.Request().Context(), hospitalID, c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AcceptConsult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	cr, err := h.svc.AcceptConsult(c.Request().Context(), id, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) DeclineConsult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := h.svc.DeclineConsult(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) CompleteConsult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := h.svc.CompleteConsult(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) Heartbeat(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	uid, err := h.currentUser(c)
	if err != nil {
		return err
	}
	hospitalID := db.HospitalFromContext(c.Request().Context())
	p := h.svc.Heartbeat(c.Request().Context(), hospitalID, uid, req.Status)
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) PresenceSnapshot(c echo.Context) error {
	hospitalID := db.HospitalFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, h.svc.PresenceSnapshot(hospitalID))
}
