package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carecall/care-gateway/internal/service"
)

// OAuthServiceInterface defines the operations of the third-party login flow.
type OAuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
}

// OAuthHandlers provides HTTP handlers for the third-party login strategy.
// It produces the exact same session cookie as the email-code flow so the
// gateway never distinguishes how a credential was obtained.
type OAuthHandlers struct {
	Svc          OAuthServiceInterface
	CallbackURL  string
	CookieDomain string
	Logger       *slog.Logger
}

func (h *OAuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Begin starts the provider flow.
// GET /login/oauth?from=<optional_redirect>.
func (h *OAuthHandlers) Begin(w http.ResponseWriter, r *http.Request) {
	from := safeRedirectPath(r.URL.Query().Get("from"))

	result, err := h.Svc.BeginLogin(r.Context(), h.CallbackURL)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "oauth begin failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.setFlowCookies(w, r, flowCookieParams{State: result.State, Nonce: result.Nonce, From: from})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the provider flow.
// GET /login/oauth/callback?code=<code>&state=<state>.
func (h *OAuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, http.StatusBadRequest, "invalid state")
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing nonce")
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "oauth completion failed", "error", err)
		WriteError(w, http.StatusUnauthorized, "login failed")
		return
	}

	h.setSessionCookie(w, r, result.Token, result.ExpiresAt)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// flowCookieParams groups values stashed in short-lived cookies for the
// callback leg of the flow.
type flowCookieParams struct {
	State string
	Nonce string
	From  string
}

func (h *OAuthHandlers) setFlowCookies(w http.ResponseWriter, r *http.Request, p flowCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")

	set := func(name, value string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
	set("oauth_state", p.State)
	set("oauth_nonce", p.Nonce)
	set("post_login_redirect", p.From)
}

func (h *OAuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
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

func (h *OAuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// postLoginRedirect returns the post-login destination and clears its cookie.
func (h *OAuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirect := "/"
	if c, err := r.Cookie("post_login_redirect"); err == nil {
		// Defensive re-validation: allow only relative paths.
		if u, parseErr := url.Parse(c.Value); parseErr == nil && !u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirect = c.Value
		}
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirect
}
