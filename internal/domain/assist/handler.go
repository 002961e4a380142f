package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/internal/platform/db"
	"github.com/virtualis/alis/internal/platform/gateway"
)

const personaPrompt = `You are ALIS, the clinical assistant embedded in the Virtualis hospital dashboard. You support clinicians with concise, clinically precise answers grounded in the patient context you are given. You can stage orders for signature, look up and invite providers, and open team channels using your tools. Orders you stage are never active until a clinician signs them; say so when you stage one. Never invent patient data that is not in the provided context.`

type Handler struct {
	gw         *gateway.Client
	dispatcher *Dispatcher
	demo       *DemoEngine
}

func NewHandler(gw *gateway.Client, dispatcher *Dispatcher, demo *DemoEngine) *Handler {
	return &Handler{gw: gw, dispatcher: dispatcher, demo: demo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse, auth.RoleViewer))
	g.POST("/alis/chat", h.Chat)
	g.POST("/alis/demo", h.Demo)
}

// Chat proxies one assistant turn as an SSE stream. Tool calls requested by
// the model are executed server-side and the results fed back for a single
// follow-up turn before the stream is closed with [DONE].
func (h *Handler) Chat(c echo.Context) error {
	if h.gw == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant is not configured")
	}
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages must not be empty")
	}
	ctx := c.Request().Context()
	userID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	cc := CallContext{
		HospitalID: db.HospitalFromContext(ctx),
		UserID:     userID,
		Patient:    req.PatientContext,
	}

	ex := h.gw.NewExchange()
	ex.AddSystem(personaPrompt)
	if req.PatientContext != nil {
		pc, err := json.Marshal(req.PatientContext)
		if err == nil {
			ex.AddSystem("Current patient context: " + string(pc))
		}
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "user":
			ex.AddUser(m.Content)
		case "alis":
			ex.AddAssistant(m.Content)
		}
	}

	w := c.Response()
	streamID := "chatcmpl-" + uuid.New().String()
	started := false
	onDelta := func(delta string) {
		if !started {
			w.Header().Set(echo.HeaderContentType, "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		writeChunk(w, streamID, delta)
	}

	res, err := ex.Stream(ctx, ToolSchemas(), onDelta)
	if err != nil {
		return h.streamError(c, err, started)
	}

	if len(res.ToolCalls) > 0 {
		for _, call := range res.ToolCalls {
			ex.AddToolResult(call.ID, h.dispatcher.Dispatch(ctx, call, cc))
		}
		// One follow-up turn to narrate the tool results; no further
		// tools are offered, so the loop cannot recurse.
		if _, err := ex.Stream(ctx, nil, onDelta); err != nil {
			return h.streamError(c, err, started)
		}
	}

	if !started {
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	w.Flush()
	return nil
}

// streamError maps gateway failures onto the proxy's status contract. Once
// frames have been written the status line is gone, so the stream is simply
// terminated.
func (h *Handler) streamError(c echo.Context, err error, started bool) error {
	status := http.StatusInternalServerError
	msg := "AI service temporarily unavailable"
	switch {
	case errors.Is(err, gateway.ErrRateLimited):
		status = http.StatusTooManyRequests
		msg = "rate limit exceeded, please retry shortly"
	case errors.Is(err, gateway.ErrCreditsExhausted):
		status = http.StatusPaymentRequired
		msg = "AI credits exhausted"
	}
	log.Error().Err(err).Int("status", status).Str("body", msg).Msg("assistant stream failed")
	if started {
		fmt.Fprint(c.Response(), "data: [DONE]\n\n")
		c.Response().Flush()
		return nil
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// writeChunk emits one delta as an OpenAI-shaped completion chunk frame.
func writeChunk(w *echo.Response, streamID, delta string) {
	frame := map[string]interface{}{
		"id":     streamID,
		"object": "chat.completion.chunk",
		"model":  "alis",
		"choices": []map[string]interface{}{
			{"index": 0, "delta": map[string]string{"content": delta}},
		},
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	w.Flush()
}

type demoRequest struct {
	Scenario string `json:"scenario"`
	State    string `json:"state"`
	Action   string `json:"action"`
}

type demoResponse struct {
	State    string        `json:"state"`
	Messages []ChatMessage `json:"messages"`
}

// Demo advances a scripted scenario. The engine is stateless; the client
// sends back the state it last received.
func (h *Handler) Demo(c echo.Context) error {
	var req demoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	step, err := h.demo.Advance(c.Request().Context(), req.Scenario, req.State, req.Action)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, demoResponse{State: step.Next, Messages: step.Messages})
}
