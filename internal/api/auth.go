package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/session"
)

// authAPIHandler provides login, token exchange, logout and account changes.
type authAPIHandler struct {
	auth    *auth.Service
	content *content.Service
	logger  *slog.Logger
}

func registerAuthRoutes(r chi.Router, deps Deps) {
	h := &authAPIHandler{auth: deps.Auth, content: deps.Content, logger: deps.Logger}
	r.With(deps.LoginLimiter.Middleware).Post("/auth/login", h.Login)
	r.Post("/auth/callback", h.Callback)
	r.Post("/auth/logout", h.Logout)
	r.Post("/auth/change-email", h.ChangeEmail)
	r.Post("/auth/change-password", h.ChangePassword)
}

// Login exchanges email and password for a bearer token.
// POST /api/auth/login
//
// @Summary      Log in
// @Description  Checks email and password and issues a bearer token. Attempts are rate limited per client IP.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  LoginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *authAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	grant, err := h.auth.Login(r.Context(), session.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: grant.Token, User: toUserResponse(grant.User)})
}

// Callback exchanges an authorization code from the identity provider for a
// bearer token.
// POST /api/auth/callback
//
// @Summary      Exchange an authorization code
// @Description  Completes the identity provider redirect flow. code_verifier is the PKCE verifier when the flow used one.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      CallbackRequest  true  "Authorization code"
// @Success      200   {object}  CallbackResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /auth/callback [post]
func (h *authAPIHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	grant, err := h.auth.ExchangeCode(r.Context(), req.Code, req.CodeVerifier)
	switch {
	case errors.Is(err, session.ErrRedirectDisabled):
		writeError(w, http.StatusNotFound, "Identity provider login is not configured")
		return
	case err != nil:
		h.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CallbackResponse{AccessToken: grant.Token})
}

// Logout revokes the caller's bearer token.
// POST /api/auth/logout
//
// @Summary      Log out
// @Description  Revokes the bearer token used for the call.
// @Tags         Auth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /auth/logout [post]
func (h *authAPIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if !h.content.Authorized(r.Context(), token) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.auth.Revoke(r.Context(), token); err != nil {
		h.logger.Error("revoke token", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeEmail updates the caller's email address.
// POST /api/auth/change-email
//
// @Summary      Change email
// @Description  Updates the caller's email after confirming their password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      ChangeEmailRequest  true  "New email and current password"
// @Success      200   {object}  DetailResponse
// @Failure      400   {object}  DetailResponse
// @Failure      401   {object}  DetailResponse
// @Failure      409   {object}  DetailResponse
// @Security     BearerToken
// @Router       /auth/change-email [post]
func (h *authAPIHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	var req ChangeEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.content.ChangeEmail(r.Context(), auth.BearerToken(r), req.Email, req.Password); err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeDetail(w, http.StatusOK, "Email updated")
}

// ChangePassword replaces the caller's password.
// POST /api/auth/change-password
//
// @Summary      Change password
// @Description  Replaces the caller's password. Every other token of the account is revoked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "Current and new password"
// @Success      200   {object}  DetailResponse
// @Failure      400   {object}  DetailResponse
// @Failure      401   {object}  DetailResponse
// @Security     BearerToken
// @Router       /auth/change-password [post]
func (h *authAPIHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.content.ChangePassword(r.Context(), auth.BearerToken(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeDetail(w, http.StatusOK, "Password updated")
}

func (h *authAPIHandler) writeBackendError(w http.ResponseWriter, err error) {
	var be *session.BackendError
	if errors.As(err, &be) {
		writeError(w, be.Status, session.ErrorMessage(err))
		return
	}
	h.logger.Error("authentication backend failed", "error", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}
