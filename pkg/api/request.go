package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// runID returns the request id set by the RequestID middleware, or a fresh
// UUID when the handler runs outside the router.
func runID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
