// Package http contains the gin handlers for the public API. Every
// response uses the same envelope: confirmation, error, message, data.
package http

import "github.com/gin-gonic/gin"

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"confirmation": "success",
		"message":      message,
		"data":         data,
	})
}
