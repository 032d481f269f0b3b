package bootstrap

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/carecall/care-gateway/config"
	"github.com/carecall/care-gateway/internal/adapters/memstore"
	"github.com/carecall/care-gateway/internal/adapters/noopdelivery"
	"github.com/carecall/care-gateway/internal/adapters/oidc"
	redisadapter "github.com/carecall/care-gateway/internal/adapters/redis"
	resendadapter "github.com/carecall/care-gateway/internal/adapters/resend"
	smtpadapter "github.com/carecall/care-gateway/internal/adapters/smtp"
	"github.com/carecall/care-gateway/internal/ports"
	"github.com/carecall/care-gateway/internal/service"
	"github.com/carecall/care-gateway/internal/token"
)

// AuthBuildConfig contains dependencies for assembling the login services.
type AuthBuildConfig struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthServices bundles the assembled login flows and the shared codec.
type AuthServices struct {
	Login *service.AuthService
	// OAuth is nil unless AUTH_MODE=oauth and the provider is fully configured.
	OAuth *service.OAuthService
	Codec *token.Codec
}

// BuildAuthServices wires the credential codec, the pending store, the
// delivery adapter, and the login services from configuration. It fails
// rather than falling back when a selected collaborator cannot be built, so
// a misconfigured gateway never starts half-open.
func BuildAuthServices(cfg AuthBuildConfig) (AuthServices, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	codec, err := token.NewCodec(token.Options{
		Secret: cfg.Config.Auth.SessionSecret,
		TTL:    cfg.Config.Auth.SessionTTL,
	})
	if err != nil {
		return AuthServices{}, fmt.Errorf("build credential codec: %w", err)
	}

	pending, err := buildPendingStore(cfg)
	if err != nil {
		return AuthServices{}, err
	}

	sender, err := buildCodeSender(cfg.Config, logger)
	if err != nil {
		return AuthServices{}, err
	}

	services := AuthServices{
		Codec: codec,
		Login: service.NewAuthService(service.AuthServiceOptions{
			Pending:         pending,
			Sender:          sender,
			Codec:           codec,
			Logger:          logger,
			CodeTTL:         cfg.Config.Auth.CodeTTL,
			DeliveryTimeout: cfg.Config.Delivery.Timeout,
			RequestLimit:    cfg.Config.Auth.CodeRequestLimit,
			RequestWindow:   cfg.Config.Auth.CodeRequestWindow,
		}),
	}

	if cfg.Config.Auth.Mode == config.AuthModeOAuth {
		oauthSvc, oauthErr := buildOAuthService(cfg.Config.Auth.OAuth, codec)
		if oauthErr != nil {
			return AuthServices{}, oauthErr
		}
		services.OAuth = oauthSvc
	}

	return services, nil
}

func buildPendingStore(cfg AuthBuildConfig) (ports.PendingStore, error) {
	switch cfg.Config.Store.Backend {
	case config.StoreMemory:
		return memstore.NewPendingStore(), nil
	case config.StoreRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("store backend %q requires a redis client", cfg.Config.Store.Backend)
		}
		return redisadapter.NewPendingStore(cfg.RedisClient), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Config.Store.Backend)
	}
}

func buildCodeSender(cfg *config.AppConfig, logger *slog.Logger) (ports.CodeSender, error) {
	provider := cfg.Delivery.Provider
	if cfg.IsDev && provider != config.DeliverySMTP && cfg.Delivery.Resend.APIKey == "" {
		// Development without credentials falls back to logging codes.
		provider = config.DeliveryLog
	}

	switch provider {
	case config.DeliveryResend:
		sender, err := resendadapter.NewClient(resendadapter.Config{
			APIKey:     cfg.Delivery.Resend.APIKey,
			From:       cfg.Delivery.Resend.From,
			Timeout:    cfg.Delivery.Resend.Timeout,
			RetryLimit: cfg.Delivery.Resend.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("build resend sender: %w", err)
		}
		return sender, nil
	case config.DeliverySMTP:
		sender, err := smtpadapter.NewMailer(smtpadapter.Config{
			Host:     cfg.Delivery.SMTP.Host,
			Port:     strconv.Itoa(cfg.Delivery.SMTP.Port),
			From:     cfg.Delivery.SMTP.From,
			Username: cfg.Delivery.SMTP.Username,
			Password: cfg.Delivery.SMTP.Password,
			Timeout:  cfg.Delivery.SMTP.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build smtp sender: %w", err)
		}
		return sender, nil
	case config.DeliveryLog:
		logger.Warn("code delivery set to log only; codes will appear in server logs")
		return noopdelivery.NewSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown delivery provider %q", provider)
	}
}

func buildOAuthService(cfg config.OAuthConfig, codec *token.Codec) (*service.OAuthService, error) {
	if cfg.DiscoveryURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("oauth mode selected but provider config incomplete")
	}

	provider, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scope:        cfg.Scope,
		DiscoveryURL: cfg.DiscoveryURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build OIDC provider: %w", err)
	}

	return service.NewOAuthService(service.OAuthServiceOptions{
		Provider: provider,
		Codec:    codec,
	}), nil
}
