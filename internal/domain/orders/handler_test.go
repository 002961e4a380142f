package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/virtualis/alis/internal/platform/auth"
	"github.com/virtualis/alis/internal/platform/db"
)

func setupHandlerTest(userID uuid.UUID, roles ...string) (*echo.Echo, *Service) {
	e := echo.New()
	svc := NewService(newMockOrderRepo(), newMockRxRepo())
	h := NewHandler(svc)

	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, auth.UserIDKey, userID.String())
			ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
			ctx = context.WithValue(ctx, db.HospitalIDKey, "hopital-virtualis")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	h.RegisterRoutes(api)
	return e, svc
}

func TestStageOrderHandler(t *testing.T) {
	e, _ := setupHandlerTest(uuid.New(), auth.RoleNurse)

	body := `{"patient_id":"` + uuid.NewString() + `","order_type":"lab","name":"BMP","priority":"STAT"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var o StagedOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.Source != SourceClinician {
		t.Errorf("source = %q, want %q", o.Source, SourceClinician)
	}
	if o.HospitalID != "hopital-virtualis" {
		t.Errorf("hospital_id = %q, want scoped value", o.HospitalID)
	}
}

func TestSignOrderForbiddenForNurse(t *testing.T) {
	signerID := uuid.New()
	e, svc := setupHandlerTest(signerID, auth.RoleNurse)

	o := validOrder()
	if err := svc.Stage(context.Background(), o); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+o.ID.String()+"/sign", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestSignOrderHandler(t *testing.T) {
	signerID := uuid.New()
	e, svc := setupHandlerTest(signerID, auth.RoleClinician)

	o := validOrder()
	if err := svc.Stage(context.Background(), o); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+o.ID.String()+"/sign", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var signed StagedOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &signed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if signed.SignedBy == nil || *signed.SignedBy != signerID {
		t.Error("signed_by not set to the authenticated clinician")
	}

	// A second sign attempt conflicts.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second sign status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestListOrdersFilterByStatus(t *testing.T) {
	e, svc := setupHandlerTest(uuid.New(), auth.RoleViewer)
	ctx := context.Background()

	a := validOrder()
	if err := svc.Stage(ctx, a); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	b := validOrder()
	if err := svc.Stage(ctx, b); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := svc.Sign(ctx, b.ID, uuid.New()); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=staged", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Data  []*StagedOrder `json:"data"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}
