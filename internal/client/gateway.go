// ABOUTME: Single outbound channel to the NextStep API
// ABOUTME: Attaches bearer credentials and refreshes once on 401, coalescing concurrent refreshes

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

const refreshPath = "/auth/refresh/"

// Request describes one API call. Body is kept as bytes so a replay after
// a credential refresh resends exactly the same payload.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
	// Public requests carry no bearer header and are never refresh-retried
	Public bool
	// BaseURL overrides the gateway base URL (used for the API root)
	BaseURL string
}

// Gateway sends requests with the stored bearer credential
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	store      credstore.Store
	limiter    *rate.Limiter
	refreshes  singleflight.Group

	mu        sync.RWMutex
	onExpired func()
}

// Option configures a Gateway
type Option func(*Gateway)

// WithHTTPClient replaces the default 30s-timeout client
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gateway) { g.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.httpClient.Timeout = d }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionExpiredHook sets the callback run after a failed refresh
func WithSessionExpiredHook(fn func()) Option {
	return func(g *Gateway) { g.onExpired = fn }
}

// NewGateway creates a gateway for baseURL reading credentials from store
func NewGateway(baseURL string, store credstore.Store, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store: store,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetSessionExpiredHook replaces the callback run after a failed refresh.
// The session store registers itself here once it exists.
func (g *Gateway) SetSessionExpiredHook(fn func()) {
	g.mu.Lock()
	g.onExpired = fn
	g.mu.Unlock()
}

// BaseURL returns the API base URL
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
//
// A 401 on a non-public request triggers at most one refresh and one replay.
// If another request already rotated the access token since this one was
// sent, the replay happens without a second refresh.
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	retried := false
	for {
		resp, usedToken, err := g.send(ctx, req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized && !req.Public && !retried {
			drain(resp)
			retried = true
			if err := g.ensureFreshAccess(ctx, usedToken); err != nil {
				return err
			}
			continue
		}

		return decodeResponse(resp, out)
	}
}

// send performs one HTTP round trip and returns the token it attached
func (g *Gateway) send(ctx context.Context, req Request) (*http.Response, string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, "", g.requestError(ctx, err)
		}
	}

	base := g.baseURL
	if req.BaseURL != "" {
		base = req.BaseURL
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, base+req.Path, body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	var token string
	if !req.Public {
		creds, err := g.store.Load()
		if err != nil {
			slog.Warn("Failed to load credentials", "error", err)
		} else if creds.HasAccess() {
			token = creds.Access
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, token, g.requestError(ctx, err)
	}

	slog.Debug("API request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	return resp, token, nil
}

// ensureFreshAccess makes sure the stored access token differs from the one
// that was just rejected, refreshing it if needed. Concurrent callers share a
// single in-flight refresh.
func (g *Gateway) ensureFreshAccess(ctx context.Context, rejected string) error {
	if creds, err := g.store.Load(); err == nil && creds.HasAccess() && creds.Access != rejected {
		return nil
	}

	ch := g.refreshes.DoChan("refresh", func() (any, error) {
		// One waiter giving up must not fail the refresh for the others.
		return nil, g.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return g.requestError(ctx, ctx.Err())
	}
}

// refresh exchanges the stored refresh credential for a new access
// credential. Any failure clears the stored credentials and fires the
// session-expired hook.
func (g *Gateway) refresh(ctx context.Context) error {
	creds, err := g.store.Load()
	if err != nil || creds.Refresh == "" {
		g.expire("no refresh credential")
		return errors.WithHint(ErrSessionExpired, "log in again with `nextstep login`")
	}

	slog.Info("Refreshing access credential")

	body, _ := json.Marshal(map[string]string{"refresh": creds.Refresh})
	resp, _, err := g.send(ctx, Request{
		Method:      http.MethodPost,
		Path:        refreshPath,
		Body:        body,
		ContentType: "application/json",
		Public:      true,
	})
	if err != nil {
		g.expire(err.Error())
		return errors.WithHint(errors.WithSecondaryError(ErrSessionExpired, err), "log in again with `nextstep login`")
	}

	var tokens Tokens
	if err := decodeResponse(resp, &tokens); err != nil || tokens.Access == "" {
		reason := "empty access credential"
		if err != nil {
			reason = err.Error()
		}
		g.expire(reason)
		return errors.WithHint(ErrSessionExpired, "log in again with `nextstep login`")
	}

	if err := g.store.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		return errors.Wrap(err, "failed to store refreshed credential")
	}
	return nil
}

// expire clears credentials and notifies the session owner
func (g *Gateway) expire(reason string) {
	slog.Warn("Credential refresh failed, clearing session", "reason", reason)
	if err := g.store.Clear(); err != nil {
		slog.Error("Failed to clear credentials", "error", err)
	}

	g.mu.RLock()
	hook := g.onExpired
	g.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

// requestError converts context errors to user-friendly messages
func (g *Gateway) requestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.New("request timed out")
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.New("request timed out")
	}
	return errors.WithHint(
		errors.Wrapf(err, "cannot connect to backend at %s", g.baseURL),
		"check NEXTSTEP_API_URL or --api-url")
}

// decodeResponse closes resp and decodes a 2xx body into out
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "invalid response from backend")
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
