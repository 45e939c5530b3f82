package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/model"
	"github.com/fabrichub/fabrichub/internal/repository"
	"github.com/fabrichub/fabrichub/internal/token"
)

// nopRefreshStore satisfies token.RefreshStore; the middleware tests only
// exercise access tokens, so no row is ever looked up.
type nopRefreshStore struct{}

func (nopRefreshStore) Store(context.Context, uint64, string, time.Time) error { return nil }
func (nopRefreshStore) Find(context.Context, string) (model.RefreshToken, error) {
	return model.RefreshToken{}, repository.ErrTokenNotFound
}
func (nopRefreshStore) DeleteByHash(context.Context, string) error { return nil }

type nopUserStore struct{}

func (nopUserStore) GetByID(context.Context, uint64) (model.User, error) {
	return model.User{}, repository.ErrUserNotFound
}

func testService(t *testing.T) *token.Service {
	t.Helper()
	return token.New(token.Config{
		AccessSecret:  "mw-access",
		RefreshSecret: "mw-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, nopUserStore{}, nopRefreshStore{})
}

func issueAccess(t *testing.T, ts *token.Service, userID uint64, role string) string {
	t.Helper()
	pair, err := ts.IssuePair(context.Background(), userID, "u@e.com", role)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	return pair.AccessToken
}

// call runs a request through Auth into a handler that echoes the identity
// it sees.
func call(ts *token.Service, authz string) (*httptest.ResponseRecorder, token.Identity, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen token.Identity
	var ok bool
	h := func(c echo.Context) error {
		seen, ok = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	}
	_ = Auth(ts)(h)(c)
	return rec, seen, ok
}

func TestAuth_ValidToken_AttachesIdentity(t *testing.T) {
	ts := testService(t)
	access := issueAccess(t, ts, 42, model.RoleCustomer)

	rec, ident, ok := call(ts, "Bearer "+access)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !ok {
		t.Fatal("IdentityFrom returned no identity")
	}
	if ident.UserID != 42 || ident.Role != model.RoleCustomer {
		t.Errorf("identity = %+v, want UserID=42 Role=CUSTOMER", ident)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	ts := testService(t)
	rec, _, ok := call(ts, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ok {
		t.Error("identity must not be set on rejection")
	}
	if !strings.Contains(rec.Body.String(), "No token provided") {
		t.Errorf("body = %s, want 'No token provided'", rec.Body.String())
	}
}

func TestAuth_WrongScheme(t *testing.T) {
	ts := testService(t)
	access := issueAccess(t, ts, 1, model.RoleCustomer)
	rec, _, _ := call(ts, "Basic "+access)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No token provided") {
		t.Errorf("body = %s, want 'No token provided'", rec.Body.String())
	}
}

func TestAuth_TamperedToken(t *testing.T) {
	ts := testService(t)
	access := issueAccess(t, ts, 1, model.RoleCustomer)
	rec, _, _ := call(ts, "Bearer "+access+"x")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid or expired token") {
		t.Errorf("body = %s, want 'Invalid or expired token'", rec.Body.String())
	}
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, token.Identity{UserID: 1, Role: model.RoleAdmin})

	h := RequireRole(model.RoleSeller, model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, token.Identity{UserID: 1, Role: model.RoleCustomer})

	h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Insufficient permissions") {
		t.Errorf("body = %s, want 'Insufficient permissions'", rec.Body.String())
	}
}

func TestRequireRole_MissingIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
