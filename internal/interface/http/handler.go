package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
	apperrors "github.com/thomas-desmond/owltrek/pkg/errors"
	"github.com/thomas-desmond/owltrek/pkg/util"
)

// Handler wires the HTTP transport to the night analysis service.
type Handler struct {
	nightsSvc nights.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(nightsSvc nights.Service, logger *slog.Logger) *Handler {
	return &Handler{
		nightsSvc: nightsSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// Nights analyzes the upcoming nights for a single location passed as
// query parameters.
func (h *Handler) Nights(c *gin.Context) {
	loc, days, err := parseNightsQuery(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	analyses, err := h.nightsSvc.AnalyzeWindow(c.Request.Context(), loc, days, util.NowUTC())
	if err != nil {
		status := http.StatusInternalServerError
		code := "analysis_failed"
		if apperrors.IsCode(err, "invalid_input") || apperrors.IsCode(err, "invalid_timezone") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location": loc,
		"nights":   analyses,
	})
}

// Digest analyzes several locations in one request.
func (h *Handler) Digest(c *gin.Context) {
	var req nights.DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.nightsSvc.Digest(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "digest_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Healthz reports process liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseNightsQuery(c *gin.Context) (nights.Location, int, error) {
	loc := nights.Location{
		Name:     c.Query("name"),
		Timezone: c.Query("timezone"),
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return nights.Location{}, 0, apperrors.Wrap("invalid_input", "lat must be a number", err)
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return nights.Location{}, 0, apperrors.Wrap("invalid_input", "lon must be a number", err)
	}
	loc.Latitude = lat
	loc.Longitude = lon

	if loc.Timezone == "" {
		return nights.Location{}, 0, apperrors.Wrap("invalid_input", "timezone is required", nil)
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 {
			return nights.Location{}, 0, apperrors.Wrap("invalid_input", "days must be a positive integer", err)
		}
	}

	return loc, days, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
