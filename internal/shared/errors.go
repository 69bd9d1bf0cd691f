package shared

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is the only error body clients ever see. Upstream provider and
// storage details stay in the server log.
type APIError struct {
	Message string `json:"error" example:"No file uploaded"`
}

func NewAPIError(message string) *APIError {
	return &APIError{Message: message}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) ToHTTP(status int) *echo.HTTPError {
	return echo.NewHTTPError(status, e)
}

func BadRequest(message string) *echo.HTTPError {
	return NewAPIError(message).ToHTTP(http.StatusBadRequest)
}

func NotFound(message string) *echo.HTTPError {
	return NewAPIError(message).ToHTTP(http.StatusNotFound)
}

func RequestTooLarge(message string) *echo.HTTPError {
	return NewAPIError(message).ToHTTP(http.StatusRequestEntityTooLarge)
}

func InternalError(message string) *echo.HTTPError {
	return NewAPIError(message).ToHTTP(http.StatusInternalServerError)
}

// HTTPErrorHandler renders every error as {"error": "..."}. Errors that are
// not *echo.HTTPError become a generic 500.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if status >= http.StatusInternalServerError && logger != nil {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil && logger != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}

func errorBody(err error) (int, *APIError) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, NewAPIError(http.StatusText(http.StatusInternalServerError))
	}

	if he.Internal != nil {
		var inner *echo.HTTPError
		if errors.As(he.Internal, &inner) {
			he = inner
		}
	}

	switch m := he.Message.(type) {
	case *APIError:
		return he.Code, m
	case string:
		return he.Code, NewAPIError(m)
	case error:
		return he.Code, NewAPIError(m.Error())
	default:
		if m == nil {
			return he.Code, NewAPIError(http.StatusText(he.Code))
		}
		return he.Code, NewAPIError(fmt.Sprint(m))
	}
}
