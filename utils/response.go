package utils

import "github.com/gin-gonic/gin"

// JSONResponse is the envelope every API handler responds with. Code 0 means
// success; non-zero codes follow the 4xxxx/5xxxx taxonomy used across the
// controllers. Cached list payloads store the full envelope so a cache hit can
// be written back verbatim.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes an envelope with an explicit HTTP status.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success writes a 200 envelope with code 0.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error writes an error envelope. Details that should not reach clients are
// logged by the caller, not embedded in the message.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
