package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andressep95/propertyhub/internal/config"
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/pkg/logger"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/andressep95/propertyhub/web"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFixture struct {
	app      *fiber.App
	resolver *stubResolver
	revoker  *stubRevoker
	audit    *stubAudit
	reports  *stubReports
	session  *domain.Session
}

// newRouteFixture mounts the production route table behind the session middleware.
func newRouteFixture(t *testing.T, opts RouteOptions) *routeFixture {
	t.Helper()

	session := &domain.Session{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Role:           domain.RoleStaff,
		OrganizationID: uuid.New(),
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	f := &routeFixture{
		resolver: &stubResolver{sessions: map[string]*domain.Session{"valid-token": session}},
		revoker:  &stubRevoker{},
		audit:    &stubAudit{},
		reports:  &stubReports{out: []byte(sampleCSV)},
		session:  session,
	}

	log := logger.Nop()
	v := validator.NewValidator()
	cookie := config.CookieConfig{Name: testCookie}

	report := NewReportHandler(f.reports, log)
	report.now = func() time.Time { return time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC) }

	f.app = fiber.New(fiber.Config{Views: web.Engine()})
	f.app.Use(middleware.SessionMiddleware(f.resolver, testCookie))
	SetupRoutes(f.app, Handlers{
		Auth:           NewAuthHandler(&stubAuth{}, f.revoker, f.audit, v, cookie, log),
		Session:        NewSessionHandler(nil, log),
		Password:       NewPasswordHandler(nil, v, cookie, log),
		Setup:          NewSetupHandler(nil, v, log),
		User:           NewUserHandler(nil, v, log),
		UtilityAccount: NewUtilityAccountHandler(nil, log),
		Report:         report,
		Page:           NewPageHandler(nil, nil, nil, v, log),
		Health:         NewHealthHandler(nil, log),
	}, opts)
	return f
}

func TestRoutes_ReportIsPublicByDefault(t *testing.T) {
	f := newRouteFixture(t, RouteOptions{})

	resp, err := f.app.Test(reportRequest(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="opportunity_loss_report_2024-03-07.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, sampleCSV, readBody(t, resp))
	require.Len(t, f.reports.filters, 1)
	assert.Nil(t, f.reports.filters[0].OrganizationID)
	// the filename date and the report's as-of instant come from one clock reading
	assert.Equal(t, time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC), f.reports.filters[0].AsOf)

	resp, err = f.app.Test(reportRequest("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, f.reports.filters, 2)
	require.NotNil(t, f.reports.filters[1].OrganizationID)
	assert.Equal(t, f.session.OrganizationID, *f.reports.filters[1].OrganizationID)
}

func TestRoutes_ReportSessionLookupFailure(t *testing.T) {
	for _, opts := range []RouteOptions{{}, {ReportRequiresSession: true}} {
		f := newRouteFixture(t, opts)
		f.resolver.err = errors.New("redis down")

		resp, err := f.app.Test(reportRequest("valid-token"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(fiber.HeaderContentDisposition))
		assert.JSONEq(t, `{"error":"Failed to generate report"}`, readBody(t, resp))
		assert.Empty(t, f.reports.filters)
	}
}

func TestRoutes_ReportRequiresSessionWhenConfigured(t *testing.T) {
	f := newRouteFixture(t, RouteOptions{ReportRequiresSession: true})

	resp, err := f.app.Test(reportRequest(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, readBody(t, resp))
	assert.Empty(t, f.reports.filters)

	resp, err = f.app.Test(reportRequest("valid-token"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, sampleCSV, readBody(t, resp))
}

func TestRoutes_ReportGenerationFailure(t *testing.T) {
	f := newRouteFixture(t, RouteOptions{})
	f.reports.err = errors.New("pq: connection reset by peer")

	resp, err := f.app.Test(reportRequest(""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.JSONEq(t, `{"error":"Failed to generate report"}`, readBody(t, resp))
}

func TestRoutes_Logout(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		f := newRouteFixture(t, RouteOptions{})

		resp, err := f.app.Test(logoutRequest(""))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, readBody(t, resp))
		assert.Empty(t, f.audit.calls)
	})

	t.Run("with session", func(t *testing.T) {
		f := newRouteFixture(t, RouteOptions{})

		resp, err := f.app.Test(logoutRequest("valid-token"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, readBody(t, resp))
		require.Len(t, f.audit.calls, 1)
		assert.Equal(t, domain.AuditEventLogout, f.audit.calls[0].kind)
		assert.Equal(t, f.session.UserID, f.audit.calls[0].userID)
	})

	t.Run("audit failure is swallowed", func(t *testing.T) {
		f := newRouteFixture(t, RouteOptions{})
		f.audit.err = errors.New("insert failed")

		resp, err := f.app.Test(logoutRequest("valid-token"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, readBody(t, resp))
	})

	t.Run("revocation fault", func(t *testing.T) {
		f := newRouteFixture(t, RouteOptions{})
		f.revoker.err = errors.New("redis down")

		resp, err := f.app.Test(logoutRequest("valid-token"))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Failed to log logout"}`, readBody(t, resp))
	})
}

func TestRoutes_ProtectedAPIRejectsAnonymous(t *testing.T) {
	f := newRouteFixture(t, RouteOptions{})

	for _, path := range []string{"/api/users/me", "/api/utility-accounts"} {
		resp, err := f.app.Test(newGet(path))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
