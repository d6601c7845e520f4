package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/apperr"
)

type errorBody struct {
	Error   string         `json:"error"`
	Code    apperr.Code    `json:"code"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// RespondError writes err as a JSON error body with the status its code
// maps to.
func RespondError(c echo.Context, err error) error {
	e := apperr.From(err)
	if e.Status >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	return c.JSON(e.Status, errorBody{
		Error:   e.Message,
		Code:    e.Code,
		Field:   e.Field,
		Details: e.Details,
	})
}

// ErrorHandler is the echo HTTPErrorHandler: echo errors keep their
// status, everything else goes through RespondError.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, errorBody{Error: msg, Code: codeForStatus(he.Code)})
		return
	}
	_ = RespondError(c, err)
}

func codeForStatus(status int) apperr.Code {
	switch status {
	case http.StatusBadRequest:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthenticated
	case http.StatusNotFound:
		return apperr.CodeNotFound
	default:
		return apperr.CodeInternal
	}
}

func bindError(err error) error {
	return apperr.NewValidation("body", "Invalid request body: "+err.Error())
}
