package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protectedHandler(keys StaticKeys) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyMiddleware(keys)(inner)
}

func TestAPIKeyMiddleware_OpenMode(t *testing.T) {
	handler := protectedHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/lint", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "no configured keys means open access")
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	handler := protectedHandler(StaticKeys{"secret-1", "secret-2"})

	req := httptest.NewRequest(http.MethodGet, "/lint", nil)
	req.Header.Set(APIKeyHeader, "secret-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyMiddleware_MissingKey(t *testing.T) {
	handler := protectedHandler(StaticKeys{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/lint", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ApiKey", rec.Header().Get("WWW-Authenticate"))
}

func TestAPIKeyMiddleware_WrongKey(t *testing.T) {
	handler := protectedHandler(StaticKeys{"secret"})

	req := httptest.NewRequest(http.MethodGet, "/lint", nil)
	req.Header.Set(APIKeyHeader, "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaticKeys_ValidKey(t *testing.T) {
	keys := StaticKeys{"alpha", "beta"}

	assert.True(t, keys.ValidKey("alpha"))
	assert.True(t, keys.ValidKey("beta"))
	assert.False(t, keys.ValidKey("gamma"))
	assert.False(t, keys.ValidKey(""))
}
