package httpx

import (
	"errors"
	"net/http"

	"github.com/modelgate/modelgate/internal/shared"
)

// RespondError maps domain errors to envelope responses. Anything not
// matching a known sentinel becomes a detail-free 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, shared.ErrDuplicate):
		Fail(w, http.StatusBadRequest, "duplicate entry")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, shared.ErrInvalidToken):
		InvalidAPIKey(w)
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}
