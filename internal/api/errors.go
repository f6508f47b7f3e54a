package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserVisibleError carries a status code and a message that is safe to show.
type UserVisibleError struct {
	HttpCode int
	Message  string
}

func (e *UserVisibleError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.HttpCode, e.Message)
}

func NewUserVisibleError(httpCode int, message string) *UserVisibleError {
	return &UserVisibleError{
		HttpCode: httpCode,
		Message:  message,
	}
}

// errorHandler answers /api/ paths with {"error": ...} and pages with the error template.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprintf("%v", he.Message)
			}
		}

		var ue *UserVisibleError
		if errors.As(err, &ue) {
			code = ue.HttpCode
			msg = ue.Message
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		}

		if c.Response().Committed {
			return
		}

		var renderErr error
		switch {
		case c.Request().Method == http.MethodHead:
			renderErr = c.NoContent(code)
		case strings.HasPrefix(c.Request().URL.Path, "/api/"):
			renderErr = c.JSON(code, map[string]string{"error": msg})
		default:
			renderErr = c.Render(code, "error", msg)
		}
		if renderErr != nil {
			logger.Error("error response failed", zap.Error(renderErr))
		}
	}
}
