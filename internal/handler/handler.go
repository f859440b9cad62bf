package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
)

// MessageResponse is the envelope for responses carrying no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// currentUserID extracts the verified caller identity injected by the JWT
// middleware. Routes outside the protected group have no claims and get an
// invalid-token error.
func currentUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, apperrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.UserID == 0 {
		return 0, apperrors.ErrInvalidToken
	}
	return claims.UserID, nil
}

// respondError translates a domain error into its HTTP status and envelope.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// respondValidation reports a malformed or invalid request body.
func respondValidation(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, apperrors.ErrorResponse{
		Success: false,
		Message: message,
	})
}
