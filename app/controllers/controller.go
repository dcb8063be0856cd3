// Package controllers turns HTTP requests into gateway calls. Each request
// gets its own Gateway bound to the identity the middleware attached.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// base is embedded by every controller that talks to the backend.
type base struct {
	stores repositories.Factory
	events *event.Dispatcher
}

func (b base) gateway(r *http.Request) *services.Gateway {
	return services.NewGateway(b.stores, auth.IdentityFrom(r.Context())).WithEvents(b.events)
}

// fail maps err onto a status code and writes the error envelope.
func fail(w http.ResponseWriter, err error) {
	var (
		val *services.ValidationError
		nf  *services.NotFoundError
	)
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		response.Unauthorized(w)
	case errors.As(err, &val):
		response.ValidationError(w, map[string]string{"_": val.Reason})
	case errors.As(err, &nf):
		response.Error(w, http.StatusNotFound, nf.Error())
	case services.IsRemote(err):
		response.Error(w, http.StatusBadGateway, "The store is unavailable right now. Please try again.")
	default:
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decode binds the JSON body into dest and answers 400/422 itself when it
// cannot. It reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(w, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
