package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/web/entity"
)

const jsonContentType = "application/json; charset=utf-8"

// jsonData writes the uniform success envelope.
func jsonData(c *gin.Context, statusCode int, data any) {
	writeJSON(c, statusCode, entity.NewDataResponse(statusCode, data))
}

// jsonError writes the uniform error envelope.
func jsonError(c *gin.Context, statusCode int, message string) {
	writeJSON(c, statusCode, entity.NewErrorResponse(statusCode, message, c.Request.URL.Path))
}

// jsonServiceError maps a service failure onto the error envelope. Typed
// ApiErrors keep their status code and message; anything else becomes a
// generic 500 so internals never leak to the client.
func jsonServiceError(c *gin.Context, err error) {
	var apiErr *entity.ApiError
	if errors.As(err, &apiErr) {
		jsonError(c, apiErr.StatusCode, apiErr.Message)
		return
	}
	logger.Error("unexpected service error:", err)
	jsonError(c, http.StatusInternalServerError, "Something went wrong.")
}

func writeJSON(c *gin.Context, statusCode int, body any) {
	buf, err := json.Marshal(body)
	if err != nil {
		logger.Error("marshal response:", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(statusCode, jsonContentType, buf)
}
