package controllers

import (
	"net/http"

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	"github.com/agromart/agromart-backend/internal/address"
	"github.com/agromart/agromart-backend/pkg/logger"
)

func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "address")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "address")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		var payload address.CreateInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func AddressUpdate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "address")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload address.UpdateInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), userID, addressID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AddressDelete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "address")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AddressSetDefault makes the address the caller's only default.
func AddressSetDefault(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "address")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.SetDefault(r.Context(), userID, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
