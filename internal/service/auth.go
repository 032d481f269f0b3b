package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"sync"
	"time"

	domainauth "github.com/carecall/care-gateway/internal/domain/auth"
	"github.com/carecall/care-gateway/internal/ports"
)

const (
	codeLength           = 4
	defaultCodeTTL       = 10 * time.Minute
	defaultDelivery      = 5 * time.Second
	defaultRequestLimit  = 5
	defaultRequestWindow = 15 * time.Minute
	lockStripes          = 64
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Pending ports.PendingStore
	Sender  ports.CodeSender
	Codec   ports.CredentialCodec
	Logger  *slog.Logger

	// CodeTTL bounds how long an issued code stays valid. Defaults to 10m.
	CodeTTL time.Duration

	// DeliveryTimeout bounds the call to the delivery collaborator.
	// Defaults to 5s.
	DeliveryTimeout time.Duration

	// RequestLimit and RequestWindow bound how many code requests one
	// email may make within the window. Defaults to 5 per 15m.
	RequestLimit  int
	RequestWindow time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// AuthService implements the first-party email one-time-code login flow:
// issuing codes, verifying submitted email+code pairs, and minting the
// session credential on success.
//
// Operations on the same email are serialized through striped mutexes so a
// verify in flight can never observe a half-applied overwrite from a
// concurrent code request. Different emails proceed independently.
type AuthService struct {
	pending         ports.PendingStore
	sender          ports.CodeSender
	codec           ports.CredentialCodec
	logger          *slog.Logger
	codeTTL         time.Duration
	deliveryTimeout time.Duration
	limiter         *rateLimiter
	now             func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	codeTTL := opts.CodeTTL
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	deliveryTimeout := opts.DeliveryTimeout
	if deliveryTimeout <= 0 {
		deliveryTimeout = defaultDelivery
	}
	requestLimit := opts.RequestLimit
	if requestLimit <= 0 {
		requestLimit = defaultRequestLimit
	}
	requestWindow := opts.RequestWindow
	if requestWindow <= 0 {
		requestWindow = defaultRequestWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		pending:         opts.Pending,
		sender:          opts.Sender,
		codec:           opts.Codec,
		logger:          logger,
		codeTTL:         codeTTL,
		deliveryTimeout: deliveryTimeout,
		limiter:         newRateLimiter(requestLimit, requestWindow),
		now:             now,
	}
}

// RequestCode generates a one-time code for the email, stores it
// (overwriting any prior pending code so only the newest is ever valid),
// and hands it to the delivery collaborator under a bounded timeout. If
// delivery fails the pending record is rolled back so the user can retry
// cleanly. Requests over the per-email budget are rejected before any code
// is generated or delivered.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email, err := validateEmail(email)
	if err != nil {
		return err
	}

	if !s.limiter.allow(email) {
		s.logger.WarnContext(ctx, "code request rate limited", "email", email)
		return domainauth.ErrRateLimited
	}

	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	pv := domainauth.PendingVerification{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codeTTL),
	}
	if err = s.pending.Put(ctx, pv); err != nil {
		return fmt.Errorf("store pending verification: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()
	if err = s.sender.Send(sendCtx, email, code); err != nil {
		// Roll back so no dangling code blocks a clean retry.
		if delErr := s.pending.Delete(ctx, email); delErr != nil {
			s.logger.ErrorContext(ctx, "rollback pending verification failed", "error", delErr)
		}
		s.logger.WarnContext(ctx, "code delivery failed", "error", err)
		return fmt.Errorf("%w: %w", domainauth.ErrDeliveryFailed, err)
	}

	return nil
}

// VerifyResult is the outcome of a successful code verification.
type VerifyResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domainauth.Identity
}

// VerifyCode checks a submitted email+code pair against the pending store
// and mints a session credential on success. The pending entry is consumed
// on success only; a mismatch leaves it valid for a later correct attempt.
//
// Callers must surface every failure kind with one generic message so the
// endpoint cannot be used to probe which emails have a pending code.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*VerifyResult, error) {
	normalized, err := validateEmail(email)
	if err != nil {
		return nil, domainauth.ErrNoSuchVerification
	}

	lock := s.lockFor(normalized)
	lock.Lock()
	defer lock.Unlock()

	pv, err := s.pending.GetValid(ctx, normalized)
	if err != nil {
		if errors.Is(err, ports.ErrPendingNotFound) {
			return nil, domainauth.ErrNoSuchVerification
		}
		return nil, fmt.Errorf("look up pending verification: %w", err)
	}
	if pv.Expired(s.now()) {
		return nil, domainauth.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(pv.Code), []byte(code)) != 1 {
		return nil, domainauth.ErrCodeMismatch
	}

	// One-time use: consume before minting so a replayed pair can never
	// produce a second credential.
	if err = s.pending.Delete(ctx, normalized); err != nil {
		return nil, fmt.Errorf("consume pending verification: %w", err)
	}

	token, expiresAt, err := s.codec.Mint(normalized)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}

	return &VerifyResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  domainauth.Identity{Email: normalized},
	}, nil
}

func (s *AuthService) lockFor(email string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return &s.locks[h.Sum32()%lockStripes]
}

// validateEmail normalizes and applies basic format validation.
func validateEmail(email string) (string, error) {
	normalized := domainauth.NormalizeEmail(email)
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized || !strings.Contains(normalized, "@") {
		return "", domainauth.ErrInvalidEmail
	}
	return normalized, nil
}

// generateCode produces a 4-digit numeric code from a cryptographic source.
func generateCode() (string, error) {
	limit := big.NewInt(1)
	for range codeLength {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
