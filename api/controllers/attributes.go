package controllers

import (
	"net/http"

	"github.com/ezoostore/storefront-backend/api/responses"
	"github.com/ezoostore/storefront-backend/api/validators"
	"github.com/ezoostore/storefront-backend/internal/attributes"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// AttributesList returns sizes, colors and preset logos, optionally filtered by ?kind=.
func AttributesList(svc attributes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribute service unavailable"))
			return
		}

		list, err := svc.List(r.Context(), validators.QueryString(r, "kind", 16))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AttributeDetail(svc attributes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribute service unavailable"))
			return
		}

		id, err := pathParam(r, "attributeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attr, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attr)
	}
}

func AdminAttributeCreate(svc attributes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribute service unavailable"))
			return
		}

		var body attributes.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attr, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attr)
	}
}

func AdminAttributeUpdate(svc attributes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribute service unavailable"))
			return
		}

		id, err := pathParam(r, "attributeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body attributes.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attr, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attr)
	}
}

func AdminAttributeDelete(svc attributes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attribute service unavailable"))
			return
		}

		id, err := pathParam(r, "attributeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
