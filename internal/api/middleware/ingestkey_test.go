package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func runIngestKey(t *testing.T, mw echo.MiddlewareFunc, token string, setHeader bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tracking/events", nil)
	if setHeader {
		req.Header.Set(IngestTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestIngestKey_ValidToken(t *testing.T) {
	rec, called := runIngestKey(t, IngestKey("s3cret", ""), "s3cret", true)
	if !called {
		t.Fatalf("next not called with a valid token")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIngestKey_MissingToken(t *testing.T) {
	rec, called := runIngestKey(t, IngestKey("s3cret", ""), "", false)
	if called {
		t.Fatalf("handler reached without a token; no append may ever happen unauthenticated")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIngestKey_WrongToken(t *testing.T) {
	rec, called := runIngestKey(t, IngestKey("s3cret", ""), "wrong", true)
	if called {
		t.Fatalf("handler reached with a wrong token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIngestKey_NotConfigured(t *testing.T) {
	// Operational misconfiguration is 503, distinct from a caller's 401.
	rec, called := runIngestKey(t, IngestKey("", ""), "anything", true)
	if called {
		t.Fatalf("handler reached with no configured credential")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestIngestKey_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	rec, called := runIngestKey(t, IngestKey("", string(hash)), "s3cret", true)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("hashed credential must accept the matching token, got %d", rec.Code)
	}

	rec, called = runIngestKey(t, IngestKey("", string(hash)), "wrong", true)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("hashed credential must reject a wrong token, got %d", rec.Code)
	}
}

func TestIngestKey_HashTakesPrecedence(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)

	// The plaintext value is ignored once a hash is configured.
	_, called := runIngestKey(t, IngestKey("plain", string(hash)), "plain", true)
	if called {
		t.Fatalf("plaintext token must not be accepted when a hash is configured")
	}
}
