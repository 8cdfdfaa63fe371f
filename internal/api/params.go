package api

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// queryFloat parses a float query parameter. A missing parameter yields def
// unless required is set.
func queryFloat(c *gin.Context, name string, def float64, required bool) (float64, *HTTPError) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		if required {
			return 0, badRequest(fmt.Sprintf("%s is required", name), nil)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, badRequest(fmt.Sprintf("%s must be a number", name), err)
	}
	return v, nil
}

func queryRange(c *gin.Context, name string, lo, hi float64) (float64, *HTTPError) {
	v, herr := queryFloat(c, name, 0, true)
	if herr != nil {
		return 0, herr
	}
	if v < lo || v > hi {
		return 0, badRequest(fmt.Sprintf("%s must be within [%g, %g]", name, lo, hi), nil)
	}
	return v, nil
}

// queryTime parses the RFC 3339 "at" parameter. The offset in the value
// sets the local clock used for hours; a missing value means now.
func queryTime(c *gin.Context, now time.Time) (time.Time, *HTTPError) {
	raw := c.Query("at")
	if raw == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, badRequest("at must be an RFC 3339 timestamp", err)
	}
	return t, nil
}
