package types

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/clipdeck-api/pkg/errors"
)

// Handler utility functions to reduce duplication across handlers

// UserIDKey is the gin context key holding the authenticated user identity
const UserIDKey = "user_id"

// UserID returns the caller identity set by the RequireUser middleware
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// SendError maps a structured application error onto the standard
// error response, using the AppError HTTP code when one is attached
func SendError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.GetHTTPCode(), ErrorResponse{Error: appErr.Message, Details: appErr.Details})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// SendBadRequest sends a standardized bad request response
func SendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// SendNotFound sends a standardized not found response
func SendNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// SendConflict sends a standardized conflict response
func SendConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message})
}

// SendInternalError sends a standardized internal server error response
func SendInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// SendAccepted sends a standardized accepted response with data
func SendAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

// SendSuccess sends a standardized success response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a standardized created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}
