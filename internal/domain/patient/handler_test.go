package patient

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

func setupHandlerTest(roles ...string) (*echo.Echo, *Service) {
	e := echo.New()
	svc, _, _, _, _ := newTestService()
	h := NewHandler(svc)

	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, auth.UserIDKey, uuid.New().String())
			ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
			ctx = context.WithValue(ctx, db.HospitalIDKey, "hopital-virtualis")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	h.RegisterRoutes(api)
	return e, svc
}

func TestCreatePatientHandler(t *testing.T) {
	e, _ := setupHandlerTest(auth.RoleClinician)

	body := `{"mrn":"MRN-2001","first_name":"Jean","last_name":"Martin","date_of_birth":"1948-07-02T00:00:00Z","sex":"M"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.HospitalID != "hopital-virtualis" {
		t.Errorf("hospital_id = %q, want scoped value", p.HospitalID)
	}
	if p.Status != "admitted" {
		t.Errorf("status = %q, want %q", p.Status, "admitted")
	}
}

func TestCreatePatientForbiddenForViewer(t *testing.T) {
	e, _ := setupHandlerTest(auth.RoleViewer)

	body := `{"mrn":"MRN-2002","first_name":"A","last_name":"B"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestGetPatientInvalidID(t *testing.T) {
	e, _ := setupHandlerTest(auth.RoleViewer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetPatientNotFound(t *testing.T) {
	e, _ := setupHandlerTest(auth.RoleViewer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCensusHandlerScopedToHospital(t *testing.T) {
	e, svc := setupHandlerTest(auth.RoleNurse)
	ctx := context.Background()

	mine := validPatient()
	if err := svc.Create(ctx, mine); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	other := validPatient()
	other.MRN = "MRN-9999"
	other.HospitalID = "other-hospital"
	if err := svc.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Data  []*Patient `json:"data"`
		Total int        `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
	if len(resp.Data) != 1 || resp.Data[0].MRN != "MRN-1001" {
		t.Errorf("census leaked rows across hospitals: %+v", resp.Data)
	}
}

func TestRecordVitalHandlerFillsRecordedBy(t *testing.T) {
	e, svc := setupHandlerTest(auth.RoleNurse)
	ctx := context.Background()

	p := validPatient()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	body := `{"heart_rate":92,"spo2":97}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients/"+p.ID.String()+"/vitals", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var v VitalSign
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.RecordedBy == uuid.Nil {
		t.Error("recorded_by not filled from the authenticated user")
	}
	if v.PatientID != p.ID {
		t.Errorf("patient_id = %s, want %s", v.PatientID, p.ID)
	}
}

func TestDiscontinueMedicationHandler(t *testing.T) {
	e, svc := setupHandlerTest(auth.RoleClinician)
	ctx := context.Background()

	p := validPatient()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	m := &ActiveMedication{PatientID: p.ID, Name: "Heparin", Dose: "5000 units", Route: "SC", Frequency: "q8h"}
	if err := svc.StartMedication(ctx, m); err != nil {
		t.Fatalf("StartMedication() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/patients/"+p.ID.String()+"/medications/"+m.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	active, err := svc.ListMedications(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListMedications() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active medications after discontinue = %d, want 0", len(active))
	}
}
