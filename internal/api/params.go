package api

import (
	"net/http"

	"spalena53-be/internal/transport"
	"spalena53-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		verr := &transport.ValidationError{}
		verr.Add(name, "must be a valid id")
		return uuid.Nil, verr
	}
	return id, nil
}

// currentUser is only called behind RequireAuth.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := utils.GetUserIDFromContext(r.Context())
	return id
}

type messageResponse struct {
	Message string `json:"message"`
}
