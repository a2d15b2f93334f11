// Package responses writes the JSON envelopes every endpoint answers with:
// {"data": ...} on success and {"error": {...}} on failure.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
	"github.com/hbnb-dev/hbnb-backend/pkg/types"
)

// requestIDHeader is set on the response by the request id middleware
// before any handler runs.
const requestIDHeader = "X-Request-Id"

// retryAfterSeconds is advertised on retryable server-side failures.
const retryAfterSeconds = 5

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	send(w, status, types.SuccessEnvelope{Data: data})
}

// WriteNoContent answers a successful delete.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err onto its status and envelope. Client faults are
// logged at warn, everything else at error with the full cause.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("WriteError called without an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:      string(typed.Code()),
		Message:   typed.PublicMessage(),
		RequestID: w.Header().Get(requestIDHeader),
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).LogFields()
		fields["status"] = meta.HTTPStatus
		lctx := logg.WithFields(ctx, fields)
		if meta.ClientFault() {
			logg.Warn(lctx, "request.rejected")
		} else {
			logg.Error(lctx, "request.error", err)
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	if meta.Retryable && !meta.ClientFault() {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	send(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

// send marshals before touching the status line so an unencodable payload
// still yields a well-formed 500.
func send(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(types.ErrorEnvelope{Error: types.APIError{
			Code:    string(pkgerrors.CodeInternal),
			Message: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage,
		}})
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
