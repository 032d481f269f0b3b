package httpx

import (
	"log/slog"
	"net/http"

	"github.com/carecall/care-gateway/internal/ports"
)

// RouterServices holds all the collaborators needed by the HTTP router.
type RouterServices struct {
	Login LoginServiceInterface
	// Optional: third-party login strategy. Routes are only registered when set.
	OAuth            OAuthServiceInterface
	OAuthCallbackURL string

	Codec ports.CredentialCodec
	// Proxy receives every admitted request that no gateway route claims.
	Proxy http.Handler

	CookieDomain string
	// PrimaryHost, when set, redirects requests for other hostnames before
	// any authentication happens.
	PrimaryHost string
	Logger      *slog.Logger
}

// NewRouter creates the gateway's HTTP handler: auth routes, health checks,
// and the catch-all backend proxy, wrapped in the canonical-host redirect
// and the session gateway. Every path not explicitly classified public is
// protected before it can reach a handler.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Login,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	registerAuthRoutes(mux, authHandlers)

	if services.OAuth != nil {
		oauthHandlers := &OAuthHandlers{
			Svc:          services.OAuth,
			CallbackURL:  services.OAuthCallbackURL,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		}
		registerOAuthRoutes(mux, oauthHandlers)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	// Everything else, including /login page loads and all /api/* calls,
	// goes to the backend once the gateway admits it.
	if services.Proxy != nil {
		mux.Handle("/", services.Proxy)
	}

	gateway := SessionGateway(GatewayConfig{
		Codec:        services.Codec,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	})

	return CanonicalHost(services.PrimaryHost)(gateway(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /login/code", h.RequestCode)
	mux.HandleFunc("POST /login/verify", h.VerifyCode)
	mux.HandleFunc("GET /me", h.Me)
	mux.HandleFunc("POST /logout", h.Logout)
}

func registerOAuthRoutes(mux *http.ServeMux, h *OAuthHandlers) {
	mux.HandleFunc("GET /login/oauth", h.Begin)
	mux.HandleFunc("GET /login/oauth/callback", h.Callback)
}
