package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/validator"
)

// pathID reads the {id} URL param and writes a 422 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.ValidationError(w, map[string]string{"id": "id must be a valid UUID"})
		return "", false
	}
	return id, true
}

// optionalQuery returns nil for absent or empty query parameters.
func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
