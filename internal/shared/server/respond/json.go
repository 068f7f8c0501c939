package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with status. HEAD requests get headers only.
func JSON(c *gin.Context, status int, payload any) {
	if c.Request != nil && c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Accepted acknowledges work handed off to the mentor queue.
func Accepted(c *gin.Context, payload any) {
	JSON(c, http.StatusAccepted, payload)
}
