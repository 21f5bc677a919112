package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// errorResponse is the envelope of every failed request.
type errorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindDuplicateUser:
		return http.StatusConflict
	case common.KindInvalidCredentials, common.KindUnauthorized, common.KindMissingToken,
		common.KindInvalidToken, common.KindExpiredToken:
		return http.StatusUnauthorized
	case common.KindNotFound, common.KindUserNotFound:
		return http.StatusNotFound
	case common.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus classifies errors raised by echo itself (bind, routing).
func kindForStatus(code int) string {
	switch {
	case code == http.StatusUnauthorized:
		return common.KindUnauthorized
	case code == http.StatusNotFound:
		return common.KindNotFound
	case code == http.StatusTooManyRequests:
		return common.KindRateLimited
	case code >= 400 && code < 500:
		return common.KindValidation
	default:
		return common.KindInternal
	}
}

// NewHTTPErrorHandler renders every error as an errorResponse. Internal
// failures are logged and reported with a generic message.
func NewHTTPErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, c)
		if code >= http.StatusInternalServerError {
			logger.Error(c.Request().Context(), "request failed",
				"error", err,
				"method", c.Request().Method,
				"path", c.Path(),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code >= http.StatusInternalServerError {
			msg = "internal error"
		}
		return he.Code, errorResponse{Status: statusError, Error: kindForStatus(he.Code), Message: msg}
	}

	kind := common.Kind(err)
	code := statusFor(kind)
	// a refresh call without a token is a malformed request, not a 401
	if kind == common.KindMissingToken && c.Path() == "/refresh" {
		code = http.StatusBadRequest
	}
	return code, errorResponse{Status: statusError, Error: kind, Message: common.PublicMessage(err)}
}
