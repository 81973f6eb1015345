package api

import (
	"net/http"

	"spalena53-be/internal/auth"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/user"
)

type authHandler struct {
	users  user.Service
	tokens *auth.TokenManager
	secure bool
}

type authResponse struct {
	User    *user.User `json:"user"`
	Token   string     `json:"token"`
	Message string     `json:"message"`
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	auth.SetAuthCookie(w, res.Token, h.tokens.TTL(), h.secure)
	transport.WriteJSON(w, http.StatusCreated, authResponse{
		User:    res.User,
		Token:   res.Token,
		Message: "User created successfully",
	})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	auth.SetAuthCookie(w, res.Token, h.tokens.TTL(), h.secure)
	transport.WriteJSON(w, http.StatusOK, authResponse{
		User:    res.User,
		Token:   res.Token,
		Message: "Login successful",
	})
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookie(w)
	transport.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *authHandler) session(w http.ResponseWriter, r *http.Request) {
	s, err := h.users.Session(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, s)
}
