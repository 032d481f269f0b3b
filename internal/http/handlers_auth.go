package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/service"
)

// LoginServiceInterface defines the operations of the email one-time-code flow.
type LoginServiceInterface interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*service.VerifyResult, error)
}

// AuthHandlers provides HTTP handlers for the email-code login flow, the
// identity endpoint, and logout.
type AuthHandlers struct {
	Svc          LoginServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RequestCode handles the code issuance endpoint.
// POST /login/code {email}.
func (h *AuthHandlers) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	err := h.Svc.RequestCode(r.Context(), body.Email)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domainauth.ErrInvalidEmail):
		WriteError(w, http.StatusBadRequest, "invalid email")
	case errors.Is(err, domainauth.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, domainauth.ErrDeliveryFailed):
		h.logger().ErrorContext(r.Context(), "code delivery failed", "error", err)
		WriteError(w, http.StatusBadGateway, "delivery failed")
	default:
		h.logger().ErrorContext(r.Context(), "code request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// VerifyCode handles the code verification endpoint.
// POST /login/verify {email, code}.
//
// Every verification failure kind collapses to the same 401 "invalid code"
// so the endpoint leaks nothing about which emails have a pending code.
func (h *AuthHandlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	result, err := h.Svc.VerifyCode(r.Context(), body.Email, body.Code)
	if err != nil {
		if errors.Is(err, domainauth.ErrNoSuchVerification) ||
			errors.Is(err, domainauth.ErrCodeExpired) ||
			errors.Is(err, domainauth.ErrCodeMismatch) {
			WriteError(w, http.StatusUnauthorized, "invalid code")
			return
		}
		h.logger().ErrorContext(r.Context(), "code verification failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.setSessionCookie(w, r, result.Token, result.ExpiresAt)
	WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": result.Token,
		"token_type":   "Bearer",
	})
}

// Me returns the authenticated identity.
// GET /me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		// Only reachable if the route was registered outside the gateway.
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"email": identity.Email})
}

// Logout clears the session cookie on the client.
// POST /logout.
//
// Credentials are stateless, so logout is purely a client-side operation;
// there is no server-side session to destroy.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r, h.CookieDomain)
	w.WriteHeader(http.StatusNoContent)
}

// setSessionCookie writes the session cookie based on the credential's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}
