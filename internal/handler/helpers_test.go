package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/token"
)

const testBcryptCost = 4 // minimum cost keeps the hashing tests fast

func newTestTokens(users *fakeUserStore, tokens *fakeTokenStore) *token.Service {
	return token.New(token.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, users, tokens)
}

// newJSONContext builds an Echo context carrying a JSON body.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// callAuthed runs the handler behind the auth middleware with a real access
// token for the given user, optionally binding path params.
func callAuthed(t *testing.T, ts *token.Service, h echo.HandlerFunc, method, target, body string,
	userID uint64, email, role string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	pair, err := ts.IssuePair(context.Background(), userID, email, role)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	c, rec := newJSONContext(method, target, body)
	c.Request().Header.Set("Authorization", "Bearer "+pair.AccessToken)
	setParams(c, params)

	if err := middleware.Auth(ts)(h)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func setParams(c echo.Context, params map[string]string) {
	if len(params) == 0 {
		return
	}
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}
