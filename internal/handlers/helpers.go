package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-progress-api/internal/analytics"
	apierrors "github.com/yukikurage/project-progress-api/internal/errors"
	"github.com/yukikurage/project-progress-api/internal/services"
)

// bindJSON decodes the request body into req. A malformed date gets its own
// error so it is not reported as a generic bad body.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if errors.Is(err, analytics.ErrInvalidDate) {
		apierrors.InvalidFormat(c, "Invalid date, expected YYYY-MM-DD")
		return false
	}
	apierrors.BadRequest(c, "Invalid request body")
	return false
}

// referenceDate returns the ?now=YYYY-MM-DD query value, or today when absent.
// ok is false when a value was given but could not be parsed.
func referenceDate(c *gin.Context) (analytics.Date, bool) {
	raw := c.Query("now")
	if raw == "" {
		return services.Today(), true
	}
	d, err := analytics.ParseDateStrict(raw)
	if err != nil || d.IsZero() {
		return analytics.Date{}, false
	}
	return d, true
}

func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	return v, err == nil
}

// optionalUintQuery parses an optional numeric query value.
func optionalUintQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// optionalBoolQuery parses an optional boolean query value.
func optionalBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
