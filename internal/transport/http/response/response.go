package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeOK               = 0
	CodeBadRequest       = 40000
	CodeUnauthorized     = 40100
	CodeForbidden        = 40300
	CodeInternalServer   = 50000
	CodeResourceNotFound = 40401
)

// APIResponse is the envelope for catalogue and auth routes. The browser and
// AI routes keep their bare {msg}/{reply}/{error} bodies.
type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Msg writes {"msg": message}.
func Msg(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"msg": message})
}

// Reply writes {"reply": reply}.
func Reply(c *gin.Context, httpStatus int, reply string) {
	c.JSON(httpStatus, gin.H{"reply": reply})
}

// Fail writes {"error": message}.
func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
