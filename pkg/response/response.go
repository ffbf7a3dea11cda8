package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the uniform JSON envelope returned by all handlers.
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: 0, Message: message, Data: data})
}

func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Code: http.StatusBadRequest, Message: message, Data: data})
}

// Error writes an envelope with an explicit HTTP status and app code.
func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Body{Code: code, Message: message})
}

// AbortError is Error plus request abortion, for middleware use.
func AbortError(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, Body{Code: code, Message: message})
}
