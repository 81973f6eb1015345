package api

import (
	"net/http"

	"spalena53-be/internal/address"
	"spalena53-be/internal/transport"
)

type addressHandler struct {
	addresses address.Service
}

func (h *addressHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.addresses.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, list)
}

func (h *addressHandler) create(w http.ResponseWriter, r *http.Request) {
	var in address.CreateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	addr, err := h.addresses.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, addr)
}

func (h *addressHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in address.CreateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	addr, err := h.addresses.Update(r.Context(), address.UpdateInput{AddressID: id, CreateInput: in})
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, addr)
}

func (h *addressHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, messageResponse{Message: "Address deleted"})
}

func (h *addressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.addresses.SetDefaultAddress(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, messageResponse{Message: "Default address updated"})
}
