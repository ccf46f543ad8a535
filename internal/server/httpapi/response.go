package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/services"
)

// Error codes returned in the error_code field.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUserExists         = "USER_EXISTS"
	CodeConstraint         = "DB_CONSTRAINT"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeTokenError         = "TOKEN_ERROR"
	CodeServerError        = "SERVER_ERROR"
)

type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order. An empty message means the error text is safe to show.
var errorTable = []errorMapping{
	{common.ErrValidation, http.StatusBadRequest, CodeValidation, ""},
	{common.ErrDuplicateIdentity, http.StatusBadRequest, CodeUserExists, "email is already registered"},
	{common.ErrIntegrityViolation, http.StatusBadRequest, CodeConstraint, "database integrity violation"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "invalid credentials"},
	{common.ErrIdentityNotFound, http.StatusNotFound, CodeUserNotFound, "user not found"},
	{common.ErrorNotFound, http.StatusNotFound, CodeNotFound, "perfume not found"},
	{common.ErrTokenIssue, http.StatusInternalServerError, CodeTokenError, "could not issue token"},
}

var authMessages = map[string]string{
	services.ReasonExpired:        "token has expired",
	services.ReasonMalformed:      "malformed token",
	services.ReasonMissingSubject: "token has no subject",
	services.ReasonUserNotFound:   "user not found",
	services.ReasonMissingToken:   "missing bearer token",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates err into a status code and error body. Anything it
// does not recognise becomes SERVER_ERROR and is logged, not echoed.
func writeError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		msg, ok := authMessages[authErr.Reason]
		if !ok {
			msg = "not authenticated"
		}
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{ErrorCode: CodeNotAuthenticated, Message: msg})
		return
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			writeJSON(w, m.status, ErrorResponse{ErrorCode: m.code, Message: msg})
			return
		}
	}

	l.Error(ctx, "unhandled error", "error", err, "request_id", requestIDFrom(ctx))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{ErrorCode: CodeServerError, Message: "internal server error"})
}

func validationError(msg string) error {
	return &validationErr{msg: msg}
}

type validationErr struct{ msg string }

func (e *validationErr) Error() string        { return e.msg }
func (e *validationErr) Is(target error) bool { return target == common.ErrValidation }
