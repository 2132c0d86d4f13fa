package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetboard/tracking-service/internal/api/metrics"
)

// IngestTokenHeader carries the shared secret telemetry sources present.
const IngestTokenHeader = "X-Ingest-Token"

// IngestKey gates the telemetry ingest endpoint on a shared secret.
//
// tokenHash, when non-empty, is a bcrypt hash of the secret and takes
// precedence over the plaintext token. With neither configured every request
// answers 503: that is an operational misconfiguration, not a caller error,
// and must page someone rather than read as a forbidden client.
func IngestKey(token, tokenHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" && tokenHash == "" {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "ingest credential not configured")
			}

			presented := c.Request().Header.Get(IngestTokenHeader)
			if presented == "" {
				metrics.IngestErrorsTotal.WithLabelValues("unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing ingest token")
			}

			if !tokenMatches(presented, token, tokenHash) {
				metrics.IngestErrorsTotal.WithLabelValues("unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid ingest token")
			}

			return next(c)
		}
	}
}

func tokenMatches(presented, token, tokenHash string) bool {
	if tokenHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
