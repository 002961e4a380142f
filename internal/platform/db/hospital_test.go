package db

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runHospitalMiddleware(t *testing.T, setup func(c echo.Context, req *http.Request), defaultHospital string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c, req)
	}

	var resolved string
	handler := func(c echo.Context) error {
		resolved = HospitalFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	err := HospitalMiddleware(defaultHospital)(handler)(c)
	return resolved, err
}

func TestHospitalMiddleware_JWTClaimWins(t *testing.T) {
	resolved, err := runHospitalMiddleware(t, func(c echo.Context, req *http.Request) {
		c.Set("jwt_hospital_id", "mercy-general")
		req.Header.Set("X-Hospital-ID", "other")
	}, "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != "mercy-general" {
		t.Errorf("expected mercy-general, got %q", resolved)
	}
}

func TestHospitalMiddleware_HeaderFallback(t *testing.T) {
	resolved, err := runHospitalMiddleware(t, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Hospital-ID", "st-lukes")
	}, "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != "st-lukes" {
		t.Errorf("expected st-lukes, got %q", resolved)
	}
}

func TestHospitalMiddleware_Default(t *testing.T) {
	resolved, err := runHospitalMiddleware(t, nil, "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != "fallback" {
		t.Errorf("expected fallback, got %q", resolved)
	}
}

func TestHospitalMiddleware_RejectsInvalid(t *testing.T) {
	_, err := runHospitalMiddleware(t, func(c echo.Context, req *http.Request) {
		req.Header.Set("X-Hospital-ID", "bad; DROP TABLE")
	}, "fallback")
	if err == nil {
		t.Fatal("expected error for invalid hospital identifier")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
