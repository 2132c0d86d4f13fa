package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fleetboard/tracking-service/internal/api/metrics"
	"github.com/fleetboard/tracking-service/internal/core/domain"
	"github.com/fleetboard/tracking-service/internal/core/ports"
	"github.com/fleetboard/tracking-service/internal/live"
)

const keepaliveInterval = 15 * time.Second

// TrackingHandler serves the ingest, query, live stream and route endpoints.
type TrackingHandler struct {
	ingest     ports.IngestService
	query      ports.QueryService
	hub        *live.Hub
	cacheTTL   time.Duration
	mapEnabled bool
}

// NewTrackingHandler creates a TrackingHandler. cacheTTL is advertised on
// query responses via Cache-Control; mapEnabled reflects whether a map
// provider credential is configured.
func NewTrackingHandler(
	ingest ports.IngestService,
	query ports.QueryService,
	hub *live.Hub,
	cacheTTL time.Duration,
	mapEnabled bool,
) *TrackingHandler {
	return &TrackingHandler{
		ingest:     ingest,
		query:      query,
		hub:        hub,
		cacheTTL:   cacheTTL,
		mapEnabled: mapEnabled,
	}
}

// Ingest handles POST /v1/tracking/events — records one telemetry report.
//
// @Summary      Ingest a telemetry report
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        X-Ingest-Token  header    string                  true  "Shared ingest secret"
// @Param        body            body      telemetryReportRequest  true  "Telemetry report"
// @Success      200             {object}  ingestResponse
// @Failure      401             {object}  errorResponse
// @Failure      404             {object}  errorResponse
// @Failure      422             {object}  validationResponse
// @Failure      503             {object}  errorResponse
// @Router       /v1/tracking/events [post]
func (h *TrackingHandler) Ingest(c echo.Context) error {
	var req telemetryReportRequest
	if err := c.Bind(&req); err != nil {
		metrics.IngestErrorsTotal.WithLabelValues("invalid_payload").Inc()
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Error:  "validation failed",
			Issues: []string{"body must be valid JSON"},
		})
	}

	issues := validateIssues(c, &req)
	ts, tsIssue := parseTimestamp(req.Timestamp)
	if tsIssue != "" {
		issues = append(issues, tsIssue)
	}
	if len(issues) > 0 {
		metrics.IngestErrorsTotal.WithLabelValues("invalid_payload").Inc()
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Error:  "validation failed",
			Issues: issues,
		})
	}

	point, err := h.ingest.Record(c.Request().Context(), toReportInput(req, ts))
	if err != nil {
		if errors.Is(err, domain.ErrLoadNotFound) {
			metrics.IngestErrorsTotal.WithLabelValues("load_not_found").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{Error: "Load not found"})
		}
		metrics.IngestErrorsTotal.WithLabelValues("persistence").Inc()
		return err
	}

	metrics.PointsIngestedTotal.WithLabelValues(req.Status, "telemetry").Inc()
	return c.JSON(http.StatusOK, ingestResponse{Success: true, PointID: point.ID})
}

// ManualUpdate handles POST /v1/loads/:id/tracking — an authenticated
// operator records a point from the dashboard. Company-scoped unless the
// operator is an admin.
//
// @Summary      Record a manual tracking update
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Load id"
// @Param        body  body      manualUpdateRequest  true  "Tracking update"
// @Success      200   {object}  ingestResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  validationResponse
// @Router       /v1/loads/{id}/tracking [post]
func (h *TrackingHandler) ManualUpdate(c echo.Context) error {
	loadID, err := pathLoadID(c)
	if err != nil {
		return err
	}
	companyID, err := scopedCompanyID(c)
	if err != nil {
		return err
	}

	var req manualUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Error:  "validation failed",
			Issues: []string{"body must be valid JSON"},
		})
	}
	if issues := validateIssues(c, &req); len(issues) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Error:  "validation failed",
			Issues: issues,
		})
	}

	point, err := h.ingest.Record(c.Request().Context(), toManualInput(req, loadID, companyID))
	if err != nil {
		return err
	}

	metrics.PointsIngestedTotal.WithLabelValues(req.Status, "operator").Inc()
	return c.JSON(http.StatusOK, ingestResponse{Success: true, PointID: point.ID})
}

// Get handles GET /v1/loads/:id/tracking — the full fetch viewers seed from.
//
// @Summary      Get a load's tracking history
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Load id"
// @Success      200 {object}  trackingResponse
// @Failure      400 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/loads/{id}/tracking [get]
func (h *TrackingHandler) Get(c echo.Context) error {
	loadID, err := pathLoadID(c)
	if err != nil {
		return err
	}
	companyID, err := scopedCompanyID(c)
	if err != nil {
		return err
	}

	view, err := h.query.GetTracking(c.Request().Context(), loadID, companyID)
	if err != nil {
		return err
	}

	// Tracking is read far more often than it changes; a short private
	// window keeps repeat views off the store.
	c.Response().Header().Set("Cache-Control",
		fmt.Sprintf("private, max-age=%d", int(h.cacheTTL.Seconds())))
	return c.JSON(http.StatusOK, toTrackingResponse(view))
}

// Route handles GET /v1/loads/:id/tracking/route — the map-ready breadcrumb
// derivation. With no map credential configured the payload still carries
// the derived geometry but flags the map as disabled.
//
// @Summary      Get a load's breadcrumb route
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Load id"
// @Success      200 {object}  routeResponse
// @Failure      400 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/loads/{id}/tracking/route [get]
func (h *TrackingHandler) Route(c echo.Context) error {
	loadID, err := pathLoadID(c)
	if err != nil {
		return err
	}
	companyID, err := scopedCompanyID(c)
	if err != nil {
		return err
	}

	view, err := h.query.GetTracking(c.Request().Context(), loadID, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toRouteResponse(domain.BuildRoute(view.Points), h.mapEnabled))
}

// Stream handles GET /v1/loads/:id/tracking/stream — the live SSE feed.
// History is not replayed; clients seed with Get first and resync after any
// disconnect. Events: "point" with the full point JSON; comment lines keep
// idle connections open through proxies.
//
// @Summary      Stream live tracking points (SSE)
// @Tags         tracking
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id  path    string  true  "Load id"
// @Success      200 {string}  string  "event stream"
// @Failure      400 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/loads/{id}/tracking/stream [get]
func (h *TrackingHandler) Stream(c echo.Context) error {
	loadID, err := pathLoadID(c)
	if err != nil {
		return err
	}
	companyID, err := scopedCompanyID(c)
	if err != nil {
		return err
	}
	if err := h.query.AuthorizeView(c.Request().Context(), loadID, companyID); err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-store")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.hub.Subscribe(loadID)
	defer sub.Unsubscribe()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case point, ok := <-sub.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(toPointResponse(point))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: point\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(res, ": keepalive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// --- Shared helpers ---

// pathLoadID validates the :id path parameter before any datastore call.
func pathLoadID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid load id")
	}
	return id, nil
}

// scopedCompanyID derives the tenant filter from auth claims. Platform
// admins see every load; everyone else is scoped to their company.
func scopedCompanyID(c echo.Context) (string, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if role == "admin" {
		return "", nil
	}
	companyID, _ := c.Get("company_id").(string)
	if companyID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing company identity")
	}
	return companyID, nil
}

// validateIssues runs the request through the echo validator and flattens the
// result into the issues array the 422 contract promises.
func validateIssues(c echo.Context, req any) []string {
	err := c.Validate(req)
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return []string{err.Error()}
}

// parseTimestamp accepts an optional ISO-8601 timestamp; empty means "stamp
// at ingest" and is returned as the zero time.
func parseTimestamp(raw string) (time.Time, string) {
	if raw == "" {
		return time.Time{}, ""
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, "timestamp must be a valid ISO-8601 timestamp"
	}
	return ts, ""
}
