package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   pkgerrors.Code
		msg    string
	}{
		{"validation", pkgerrors.FieldInvalid("rating", "must be between 1 and 5"), http.StatusBadRequest, pkgerrors.CodeValidation, "rating must be between 1 and 5"},
		{"unauthenticated", pkgerrors.Unauthenticated("authentication required"), http.StatusUnauthorized, pkgerrors.CodeUnauthorized, "authentication required"},
		{"forbidden", pkgerrors.Forbidden("not yours"), http.StatusForbidden, pkgerrors.CodeForbidden, "not yours"},
		{"not found", pkgerrors.NotFound("place", "p1"), http.StatusNotFound, pkgerrors.CodeNotFound, "place p1 not found"},
		{"conflict", pkgerrors.Uniqueness("user", "email", "a@b.c"), http.StatusConflict, pkgerrors.CodeConflict, "user email already in use"},
		{"self review", pkgerrors.SelfReview(), http.StatusConflict, pkgerrors.CodeSelfReview, pkgerrors.SelfReview().Message()},
		{"duplicate", pkgerrors.DuplicateReview(), http.StatusConflict, pkgerrors.CodeDuplicate, pkgerrors.DuplicateReview().Message()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tc.err)

			require.Equal(t, tc.status, w.Code)
			var body types.ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, string(tc.code), body.Error.Code)
			assert.Equal(t, tc.msg, body.Error.Message)
		})
	}
}

func TestWriteErrorIncludesFieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.FieldInvalid("latitude", "must be between -90 and 90"))

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	details, ok := body.Error.Details.(map[string]any)
	require.True(t, ok, "expected details object, got %T", body.Error.Details)
	assert.Equal(t, "latitude", details["field"])
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("pq: relation users does not exist"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.NotContains(t, body.Error.Message, "relation")
	assert.Nil(t, body.Error.Details)
}

func TestWriteErrorHidesWrappedInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("disk"), "update place"))

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage, body.Error.Message)
}

func TestWriteErrorEchoesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Request-Id", "req-42")
	WriteError(context.Background(), nil, w, pkgerrors.NotFound("review", "r1"))

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "req-42", body.Error.RequestID)
}

func TestWriteErrorAdvertisesRetryOnDependencyFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("redis down"), "validate session"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotContains(t, w.Body.String(), "redis down")

	w = httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.NotFound("place", "p-1"))
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestWriteSuccessFallsBackOnUnencodablePayload(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
}
