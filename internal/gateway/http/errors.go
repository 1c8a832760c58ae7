package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

// writeError writes any service error as the gateway envelope. Errors that
// are not AuthErrors are masked as a generic server error.
func writeError(w http.ResponseWriter, err error) {
	var authErr *sessionsdk.AuthError
	if errors.As(err, &authErr) {
		authErr.WriteError(w)
		return
	}
	sessionsdk.ErrServerError.WriteError(w)
}
