package security

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/models"
)

// ValidateContentType ensures the request body is JSON
func ValidateContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON
}

// RequireJSON rejects write requests whose body is not JSON. Requests
// without a body pass through.
func RequireJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				return next(c)
			}
			if req.ContentLength == 0 {
				return next(c)
			}
			if !ValidateContentType(req.Header.Get(echo.HeaderContentType)) {
				return c.JSON(http.StatusUnsupportedMediaType, models.Response{
					Status:  http.StatusUnsupportedMediaType,
					Message: "Content-Type must be application/json",
				})
			}
			return next(c)
		}
	}
}
