package booking_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/domain/booking"
	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/jwt"
)

func TestCreateRouteRequiresCustomerRole(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	router := booking.NewHandler(nil).Routes(middleware.Auth(jwtSvc))

	post := func(role, body string) *httptest.ResponseRecorder {
		t.Helper()
		token, err := jwtSvc.GenerateAccessToken(uuid.New(), role)
		if err != nil {
			t.Fatalf("token gen failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for _, role := range []string{
		middleware.RolePhotographer,
		middleware.RoleOwner,
		middleware.RoleModerator,
	} {
		if w := post(role, "{}"); w.Code != http.StatusForbidden {
			t.Fatalf("role %s: expected 403, got %d", role, w.Code)
		}
	}

	// A customer passes the role gate and reaches request parsing.
	if w := post(middleware.RoleCustomer, "not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("customer: expected 400, got %d", w.Code)
	}
}
