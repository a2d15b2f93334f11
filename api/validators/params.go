package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// PathUUID reads a chi URL parameter and parses it as an entity id. A
// malformed id cannot name a stored record, so it reports not found.
func PathUUID(r *http.Request, key, kind string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, kind+" id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.NotFound(kind, raw)
	}
	return id, nil
}

// ParseUUIDs parses a list of ids supplied in a request body.
func ParseUUIDs(field string, values []string) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, pkgerrors.FieldInvalid(field, "must contain valid ids")
		}
		result = append(result, parsed)
	}
	return result, nil
}
