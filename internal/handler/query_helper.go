package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cohort-engine/internal/models"
	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

const dateLayout = "2006-01-02"

// parseDateQuery reads an optional YYYY-MM-DD query value as a calendar day
// in loc. A missing value yields the zero time.
func parseDateQuery(c *gin.Context, key string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+", expected YYYY-MM-DD")
	}
	return parsed, nil
}

func parseRangeQuery(c *gin.Context, loc *time.Location) (models.DateRange, error) {
	from, err := parseDateQuery(c, "from", loc)
	if err != nil {
		return models.DateRange{}, err
	}
	to, err := parseDateQuery(c, "to", loc)
	if err != nil {
		return models.DateRange{}, err
	}
	dateRange := models.DateRange{From: from, To: to}
	if dateRange.Inverted() {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return dateRange, nil
}

func parseFamilyQuery(c *gin.Context) (models.PeriodFamily, error) {
	family := models.PeriodFamily(strings.ToLower(strings.TrimSpace(c.Query("family"))))
	if family == "" {
		return models.PeriodFamilyQuarter, nil
	}
	if !family.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "family must be quarter or bimester")
	}
	return family, nil
}

func parseThresholdQuery(c *gin.Context, fallback float64) (float64, error) {
	raw := strings.TrimSpace(c.Query("threshold"))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "threshold must be numeric")
	}
	return value, nil
}

func parseBoolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}
