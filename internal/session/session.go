// ABOUTME: Session store holding the authenticated user and profile
// ABOUTME: Drives the anonymous -> authenticating -> authenticated|error state machine

package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

// ErrNotAuthenticated is returned by operations that need a session
var ErrNotAuthenticated = errors.New("not logged in")

// ErrExpired is recorded when the gateway forces a logout
var ErrExpired = errors.New("session expired, please log in again")

// State is the session lifecycle state
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateError
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	}
	return "unknown"
}

// API is the subset of the backend the session needs
type API interface {
	Login(ctx context.Context, identifier, secret string) (*client.Tokens, error)
	Register(ctx context.Context, input client.RegisterInput) (*client.User, error)
	Me(ctx context.Context) (*client.User, error)
	Profile(ctx context.Context) (*client.Profile, error)
	UpdateProfile(ctx context.Context, update client.ProfileUpdate) (*client.Profile, error)
}

// Snapshot is a consistent copy of the session fields
type Snapshot struct {
	State           State
	User            *client.User
	Profile         *client.Profile
	IsAuthenticated bool
	IsLoading       bool
	// Restoring is set while a persisted session is being verified at boot
	Restoring bool
	Err       error
}

// Store owns the session. It is safe for concurrent use.
type Store struct {
	api   API
	creds credstore.Store

	mu        sync.RWMutex
	state     State
	user      *client.User
	profile   *client.Profile
	isAuth    bool
	loading   bool
	restoring bool
	err       error
}

// New creates an anonymous session store
func New(api API, creds credstore.Store) *Store {
	return &Store{api: api, creds: creds}
}

// Snapshot returns a copy of the current session fields
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:           s.state,
		IsAuthenticated: s.isAuth,
		IsLoading:       s.loading,
		Restoring:       s.restoring,
		Err:             s.err,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

// IsAuthenticated reports whether a verified session exists
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuth
}

// Login exchanges credentials for tokens, then loads user and profile.
// Nothing after the failing step is persisted.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	s.begin(StateAuthenticating)

	tokens, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		return s.fail(errors.Wrap(err, "login failed"))
	}

	if err := s.creds.Save(credstore.Credentials{Access: tokens.Access, Refresh: tokens.Refresh}); err != nil {
		return s.fail(errors.Wrap(err, "failed to store credentials"))
	}

	user, err := s.loadAccount(ctx)
	if err != nil {
		return s.fail(errors.Wrap(err, "failed to load account"))
	}

	slog.Info("Logged in", "username", user.Username)
	return nil
}

// Register validates input locally, creates the account, then logs in.
// A login failure after a successful create is reported as a failure;
// the account stays created.
func (s *Store) Register(ctx context.Context, input client.RegisterInput) error {
	s.begin(StateAuthenticating)

	if err := ValidateRegistration(input); err != nil {
		return s.fail(err)
	}

	if _, err := s.api.Register(ctx, input); err != nil {
		return s.fail(errors.Wrap(err, "registration failed"))
	}
	slog.Info("Account created", "username", input.Username)

	if err := s.Login(ctx, input.Username, input.Password); err != nil {
		return errors.WithHint(err, "the account was created; try `nextstep login`")
	}
	return nil
}

// ValidateRegistration checks the fields the server would reject
func ValidateRegistration(input client.RegisterInput) error {
	var missing []string
	if strings.TrimSpace(input.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(input.Email) == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return errors.Mark(
			errors.Newf("%s required", strings.Join(missing, ", ")),
			client.ErrInvalidRequest)
	}
	if !strings.Contains(input.Email, "@") {
		return errors.Mark(errors.New("enter a valid email address"), client.ErrInvalidRequest)
	}
	if input.Password != input.PasswordConfirm {
		return errors.Mark(errors.New("passwords do not match"), client.ErrInvalidRequest)
	}
	return nil
}

// FetchUser verifies the stored credential by loading user and profile.
// Without a stored access credential it collapses to anonymous offline.
func (s *Store) FetchUser(ctx context.Context) error {
	creds, err := s.creds.Load()
	if err != nil || !creds.HasAccess() {
		s.reset(nil)
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	if _, err := s.loadAccount(ctx); err != nil {
		if perr := s.creds.SetAuthenticated(false); perr != nil {
			slog.Warn("Failed to persist session flag", "error", perr)
		}
		s.reset(err)
		return err
	}
	return nil
}

// Boot restores a persisted session. A persisted authenticated flag puts
// the store in Restoring until the server confirms the credential.
func (s *Store) Boot(ctx context.Context) error {
	creds, err := s.creds.Load()
	if err != nil {
		slog.Warn("Failed to read stored session", "error", err)
	}
	if !creds.IsAuthenticated || !creds.HasAccess() {
		s.reset(nil)
		return nil
	}

	s.mu.Lock()
	s.state = StateAuthenticating
	s.restoring = true
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	if err := s.FetchUser(ctx); err != nil {
		slog.Info("Stored session not restored", "error", err)
		return err
	}
	return nil
}

// Logout clears credentials and session fields. No server call is made.
func (s *Store) Logout() {
	if err := s.creds.Clear(); err != nil {
		slog.Warn("Failed to clear credentials", "error", err)
	}
	s.reset(nil)
}

// Expire is the gateway's forced logout after a failed refresh
func (s *Store) Expire() {
	if err := s.creds.Clear(); err != nil {
		slog.Warn("Failed to clear credentials", "error", err)
	}
	s.reset(ErrExpired)
}

// UpdateProfile patches the profile and caches the server's answer
func (s *Store) UpdateProfile(ctx context.Context, update client.ProfileUpdate) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	profile, err := s.api.UpdateProfile(ctx, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errors.Wrap(err, "failed to update profile")
		return s.err
	}
	s.profile = profile
	return nil
}

// loadAccount fetches user and profile in parallel and, when both succeed,
// marks the session authenticated. It returns the user it stored.
func (s *Store) loadAccount(ctx context.Context) (*client.User, error) {
	var (
		user    *client.User
		profile *client.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.api.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.api.Profile(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("invalid response from backend: no user")
	}

	if err := s.creds.SetAuthenticated(true); err != nil {
		return nil, errors.Wrap(err, "failed to store session flag")
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	s.profile = profile
	s.isAuth = true
	s.loading = false
	s.restoring = false
	s.err = nil
	s.mu.Unlock()
	return user, nil
}

// begin starts a mutator: clears the previous error and marks loading
func (s *Store) begin(state State) {
	s.mu.Lock()
	s.state = state
	s.loading = true
	s.restoring = false
	s.err = nil
	s.mu.Unlock()
}

// fail records err and drops any in-memory account data
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.state = StateError
	s.user = nil
	s.profile = nil
	s.isAuth = false
	s.loading = false
	s.restoring = false
	s.err = err
	s.mu.Unlock()
	return err
}

// reset returns to anonymous, keeping err for display
func (s *Store) reset(err error) {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.profile = nil
	s.isAuth = false
	s.loading = false
	s.restoring = false
	s.err = err
	s.mu.Unlock()
}
