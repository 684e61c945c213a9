package response

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-cohort-engine/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON writes data inside the envelope. Meta maps are merged in order, so a
// handler can pass the request meta followed by its own keys.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data, Meta: mergeMeta(meta)})
}

// Error converts err to the envelope error. Server-side failures are also
// attached to the gin context so the request logger records them.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(appErr)
	}
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

func mergeMeta(parts []map[string]interface{}) map[string]interface{} {
	var merged map[string]interface{}
	for _, part := range parts {
		for k, v := range part {
			if merged == nil {
				merged = make(map[string]interface{}, len(part))
			}
			merged[k] = v
		}
	}
	return merged
}

// Attachment streams a rendered file as a download.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Length", strconv.Itoa(len(payload)))
	c.Data(http.StatusOK, contentType, payload)
}
