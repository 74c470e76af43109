package utils

import "github.com/gin-gonic/gin"

// ErrorBody is the wire shape of every error response:
// {"error": {"code": ..., "message": ...}}.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithError writes the standard error envelope and stops the chain.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": ErrorBody{Code: code, Message: message}})
}
