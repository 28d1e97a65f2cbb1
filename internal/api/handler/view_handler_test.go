package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/marketplace-client/internal/core/domain"
	"github.com/servicehub/marketplace-client/internal/core/service"
)

func serveView(t *testing.T, nav *stubNavigator, session *stubSession, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	h := NewViewHandler(nav, session)
	e.GET(ViewPrefix+"/*", h.Show)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestViewHandler_RedirectsToLogin(t *testing.T) {
	nav := &stubNavigator{
		navigateFn: func(_ context.Context, fullPath string) (service.Navigation, error) {
			if fullPath != "/admin/services?page=2" {
				t.Fatalf("unexpected path %q", fullPath)
			}
			login := domain.Destination{Name: "login", Path: domain.PathLogin}
			login.Query = map[string][]string{domain.RedirectParam: {fullPath}}
			return service.Navigation{
				Requested: domain.Destination{Path: "/admin/services", Query: map[string][]string{"page": {"2"}}},
				Final:     login,
				Known:     true,
			}, nil
		},
	}
	rec := serveView(t, nav, &stubSession{}, "/views/admin/services?page=2")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/views/login?redirect=%2Fadmin%2Fservices%3Fpage%3D2" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestViewHandler_Proceeds(t *testing.T) {
	session := &stubSession{
		state: domain.SessionState{Kind: domain.SessionAuthenticated, Role: domain.RoleCustomer},
		user:  &domain.User{ID: 1, Type: domain.RoleCustomer},
	}
	nav := &stubNavigator{
		navigateFn: func(_ context.Context, fullPath string) (service.Navigation, error) {
			d := domain.Destination{Name: "customer-services", Path: fullPath}
			return service.Navigation{Requested: d, Final: d, Known: true}, nil
		},
	}
	rec := serveView(t, nav, session, "/views/customer/services")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `{"view":"customer-services","path":"/customer/services","session":"authenticated","user":{"id":1,"email":"","type":"customer"}}`
	if got := rec.Body.String(); got != want+"\n" {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestViewHandler_Superseded(t *testing.T) {
	nav := &stubNavigator{
		navigateFn: func(context.Context, string) (service.Navigation, error) {
			return service.Navigation{Decisions: []domain.Decision{{Outcome: domain.OutcomeSuperseded}}}, nil
		},
	}
	if rec := serveView(t, nav, &stubSession{}, "/views/customer/requests"); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestViewHandler_UnknownView(t *testing.T) {
	nav := &stubNavigator{
		navigateFn: func(_ context.Context, fullPath string) (service.Navigation, error) {
			d := domain.Destination{Path: fullPath}
			return service.Navigation{Requested: d, Final: d}, nil
		},
	}
	if rec := serveView(t, nav, &stubSession{}, "/views/nowhere"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
