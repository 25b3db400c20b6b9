package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Ping(_ context.Context) error { return f.err }

func TestHealthz_AlwaysOK(t *testing.T) {
	s := New(":0", nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_ReportsUnreadyWhenDependencyFails(t *testing.T) {
	s := New(":0", map[string]HealthChecker{
		"store":    fakeChecker{},
		"registry": fakeChecker{err: errors.New("dial tcp: timeout")},
	})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyz_ReadyWhenAllDependenciesOK(t *testing.T) {
	s := New(":0", map[string]HealthChecker{"store": fakeChecker{}})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
