package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultProxyTimeout = 30 * time.Second

	// maxErrorBodyBytes bounds how much of an upstream error body is read
	// while looking for a detail message.
	maxErrorBodyBytes = 64 * 1024
)

// hopByHopHeaders are connection-level headers that must not be forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// BackendProxyOptions groups parameters for NewBackendProxy.
type BackendProxyOptions struct {
	// Upstream is the base URL of the backend API, e.g. "http://api:8000".
	Upstream string

	// Client overrides the outbound HTTP client. Defaults to one with a
	// 30s timeout that does not follow redirects.
	Client *http.Client

	Logger *slog.Logger
}

// BackendProxy forwards admitted requests to the backend API, attaching the
// session credential as a bearer token. Upstream error responses are
// normalized to the gateway's own {status, detail} shape and upstream
// network failure maps to 502, so clients see one error surface regardless
// of which hop failed. The raw credential is never logged.
type BackendProxy struct {
	upstream *url.URL
	client   *http.Client
	logger   *slog.Logger
}

// NewBackendProxy constructs a proxy for the given upstream base URL.
func NewBackendProxy(opts BackendProxyOptions) (*BackendProxy, error) {
	if opts.Upstream == "" {
		return nil, errors.New("backend proxy: upstream URL is required")
	}
	upstream, err := url.Parse(opts.Upstream)
	if err != nil {
		return nil, errors.New("backend proxy: invalid upstream URL")
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, errors.New("backend proxy: upstream URL must be absolute")
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: defaultProxyTimeout,
			// Upstream redirects belong to the caller, not the proxy.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BackendProxy{upstream: upstream, client: client, logger: logger}, nil
}

// ServeHTTP implements http.Handler.
func (p *BackendProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out, err := p.outboundRequest(r)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "building upstream request failed", "error", err)
		WriteJSON(w, http.StatusInternalServerError, proxyError(http.StatusInternalServerError, "internal error"))
		return
	}

	resp, err := p.client.Do(out)
	if err != nil {
		p.logger.ErrorContext(r.Context(), "upstream request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		WriteJSON(w, http.StatusBadGateway, proxyError(http.StatusBadGateway, "upstream unavailable"))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		p.writeNormalizedError(w, resp)
		return
	}

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err = io.Copy(w, resp.Body); err != nil {
		// The client went away mid-stream; nothing left to do.
		return
	}
}

// outboundRequest clones the inbound request toward the upstream, swapping
// the session cookie for a bearer header.
func (p *BackendProxy) outboundRequest(r *http.Request) (*http.Request, error) {
	target := *p.upstream
	target.Path = singleJoin(p.upstream.Path, r.URL.Path)
	target.RawQuery = r.URL.RawQuery

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return nil, err
	}

	copyHeaders(out.Header, r.Header)
	stripSessionCookie(out)

	// The credential travels to the backend as a bearer token only. Public
	// paths proxied without identity carry no Authorization header at all.
	out.Header.Del("Authorization")
	if token, ok := CredentialFromContext(r.Context()); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	if host, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
		// Append to any chain an upstream load balancer already recorded.
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			host = prior + ", " + host
		}
		out.Header.Set("X-Forwarded-For", host)
	}
	out.Header.Set("X-Forwarded-Host", requestHost(r))
	out.Header.Set("X-Forwarded-Proto", requestScheme(r))

	return out, nil
}

// writeNormalizedError rewrites an upstream error response into the
// gateway's {status, detail} shape, salvaging the upstream detail message
// when its body carries one.
func (p *BackendProxy) writeNormalizedError(w http.ResponseWriter, resp *http.Response) {
	detail := http.StatusText(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err == nil && len(body) > 0 {
		var upstream struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &upstream) == nil && upstream.Detail != "" {
			detail = upstream.Detail
		}
	}

	WriteJSON(w, resp.StatusCode, proxyError(resp.StatusCode, detail))
}

func proxyError(status int, detail string) map[string]any {
	return map[string]any{"status": status, "detail": detail}
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopByHop(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isHopByHop(name string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

// stripSessionCookie removes the session cookie from the outbound Cookie
// header, leaving any other cookies intact.
func stripSessionCookie(out *http.Request) {
	cookies := out.Cookies()
	out.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			continue
		}
		out.AddCookie(c)
	}
}

func singleJoin(base, path string) string {
	switch {
	case base == "" || base == "/":
		return path
	case strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/"):
		return base + strings.TrimPrefix(path, "/")
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(path, "/"):
		return base + "/" + path
	default:
		return base + path
	}
}
