package middleware

import (
	"net/http"

	apperrors "clipgate/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler converts errors attached by handlers into the uniform
// response envelope. Handlers call c.Error(err) and return; this is the
// only place response bodies for failures are shaped.
func ErrorHandler(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		appErr := apperrors.Get(err)
		if appErr == nil {
			logger.Errorw("unhandled error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"confirmation": "fail",
				"error":        "An unexpected error occurred",
				"message":      "An unexpected error occurred",
				"code":         string(apperrors.ErrCodeInternal),
			})
			return
		}

		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"code", appErr.Code,
				"error", appErr.Cause,
			)
		}

		// The error field carries the user-facing text; code is the
		// machine-readable discriminator.
		body := gin.H{
			"confirmation": "fail",
			"error":        appErr.Message,
			"message":      appErr.Message,
			"code":         string(appErr.Code),
		}
		// Resource lookups carry a status payload naming what was
		// checked ("stream_status" or "video_status").
		if key, ok := appErr.Context["status_key"].(string); ok {
			flag := gin.H{"message": appErr.Message}
			if key == "stream_status" {
				flag["isLive"] = false
			} else {
				flag["isValid"] = false
			}
			body["data"] = gin.H{key: flag}
		}

		c.JSON(appErr.HTTPStatus, body)
	}
}

// Recovery turns panics into the generic 500 envelope.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"confirmation": "fail",
					"error":        "An unexpected error occurred",
					"message":      "An unexpected error occurred",
					"code":         string(apperrors.ErrCodeInternal),
				})
			}
		}()
		c.Next()
	}
}
