package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/services"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorHandler maps handler errors onto JSON replies. Unknown errors are
// logged and answered with a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, body := mapError(err)
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(code)
	} else {
		sendErr = c.JSON(code, body)
	}
	if sendErr != nil {
		c.Logger().Error(fmt.Errorf("failed to send error response: %w", sendErr))
	}
}

func mapError(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := defaultMessage(he.Code)
		if m, ok := he.Message.(string); ok && m != "" && m != http.StatusText(he.Code) {
			msg = m
		}
		return he.Code, ErrorResponse{Error: msg}
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Error: "The request could not be processed.", Fields: verr.Fields}
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, ErrorResponse{Error: "The request could not be processed.", Fields: fields}
	}

	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: defaultMessage(http.StatusNotFound)}
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: defaultMessage(http.StatusForbidden)}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: genericErrorMessage}
}

func defaultMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "The resource you're looking for doesn't exist."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusUnauthorized:
		return "Please log in to continue."
	case http.StatusBadRequest:
		return "The request could not be processed."
	}
	if code >= http.StatusInternalServerError {
		return genericErrorMessage
	}
	return http.StatusText(code)
}
