package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(c echo.Context, roles []string) {
	ctx := context.WithValue(c.Request().Context(), UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		has      []string
		required []string
		allowed  bool
	}{
		{"exact match", []string{RoleClinician}, []string{RoleClinician}, true},
		{"admin passes any", []string{RoleAdmin}, []string{RoleNurse}, true},
		{"one of several", []string{RoleNurse}, []string{RoleClinician, RoleNurse}, true},
		{"missing role", []string{RoleViewer}, []string{RoleClinician}, false},
		{"no roles", nil, []string{RoleViewer}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			contextWithRoles(c, tt.has)

			handler := func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			}

			err := RequireRole(tt.required...)(handler)(c)
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				he, ok := err.(*echo.HTTPError)
				if !ok || he.Code != http.StatusForbidden {
					t.Errorf("expected 403, got %v", err)
				}
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole([]string{RoleAdmin}, RoleClinician) {
		t.Error("admin should count as every role")
	}
	if HasRole([]string{RoleViewer}, RoleClinician) {
		t.Error("viewer should not count as clinician")
	}
	if HasRole(nil, RoleViewer) {
		t.Error("empty role set should fail")
	}
}
