// ABOUTME: Tests for the session store state machine
// ABOUTME: Uses a fake API and an in-memory credential store

package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

type fakeAPI struct {
	loginErr    error
	registerErr error
	meErr       error
	profileErr  error
	updateErr   error
	noUser      bool

	loginCalls    atomic.Int32
	registerCalls atomic.Int32
	meCalls       atomic.Int32
}

func (f *fakeAPI) Login(ctx context.Context, identifier, secret string) (*client.Tokens, error) {
	f.loginCalls.Add(1)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.Tokens{Access: "access-" + identifier, Refresh: "refresh-" + identifier}, nil
}

func (f *fakeAPI) Register(ctx context.Context, input client.RegisterInput) (*client.User, error) {
	f.registerCalls.Add(1)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &client.User{ID: 1, Username: input.Username}, nil
}

func (f *fakeAPI) Me(ctx context.Context) (*client.User, error) {
	f.meCalls.Add(1)
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.noUser {
		return nil, nil
	}
	return &client.User{ID: 1, Username: "ada", FirstName: "Ada"}, nil
}

func (f *fakeAPI) Profile(ctx context.Context) (*client.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &client.Profile{ID: 1, Bio: "gopher"}, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, update client.ProfileUpdate) (*client.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p := &client.Profile{ID: 1}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	return p, nil
}

var errBackend = errors.New("backend unavailable")

func TestLogin_Success(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{}, creds)

	require.NoError(t, s.Login(context.Background(), "ada", "pw"))

	snap := s.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.True(t, snap.IsAuthenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, "ada", snap.User.Username)
	require.NotNil(t, snap.Profile)
	assert.False(t, snap.IsLoading)
	assert.NoError(t, snap.Err)

	stored, _ := creds.Load()
	assert.Equal(t, credstore.Credentials{Access: "access-ada", Refresh: "refresh-ada", IsAuthenticated: true}, stored)
}

func TestLogin_EmptyUserResponseFails(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{noUser: true}, creds)

	require.NotPanics(t, func() {
		assert.Error(t, s.Login(context.Background(), "ada", "pw"))
	})
	snap := s.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)

	stored, _ := creds.Load()
	assert.False(t, stored.IsAuthenticated)
}

func TestLogin_BadPasswordPersistsNothing(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{loginErr: errBackend}, creds)

	err := s.Login(context.Background(), "ada", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Error(t, snap.Err)

	stored, _ := creds.Load()
	assert.Equal(t, credstore.Credentials{}, stored)
}

func TestLogin_ProfileFailureKeepsTokensOnly(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{profileErr: errBackend}, creds)

	require.Error(t, s.Login(context.Background(), "ada", "pw"))

	stored, _ := creds.Load()
	assert.Equal(t, "access-ada", stored.Access)
	assert.False(t, stored.IsAuthenticated)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Snapshot().User)
}

func TestRegister(t *testing.T) {
	valid := client.RegisterInput{
		Username:        "ada",
		Email:           "ada@example.com",
		Password:        "Sup3r-secret",
		PasswordConfirm: "Sup3r-secret",
	}

	tests := []struct {
		name         string
		input        func() client.RegisterInput
		api          *fakeAPI
		wantErr      bool
		wantRegister int32
		wantLogin    int32
		wantAuth     bool
	}{
		{
			name:         "creates then logs in",
			input:        func() client.RegisterInput { return valid },
			api:          &fakeAPI{},
			wantRegister: 1,
			wantLogin:    1,
			wantAuth:     true,
		},
		{
			name: "password mismatch is rejected locally",
			input: func() client.RegisterInput {
				in := valid
				in.PasswordConfirm = "other"
				return in
			},
			api:     &fakeAPI{},
			wantErr: true,
		},
		{
			name: "missing email is rejected locally",
			input: func() client.RegisterInput {
				in := valid
				in.Email = ""
				return in
			},
			api:     &fakeAPI{},
			wantErr: true,
		},
		{
			name:         "server rejection skips login",
			input:        func() client.RegisterInput { return valid },
			api:          &fakeAPI{registerErr: errBackend},
			wantErr:      true,
			wantRegister: 1,
		},
		{
			name:         "login failure after create is a failure",
			input:        func() client.RegisterInput { return valid },
			api:          &fakeAPI{loginErr: errBackend},
			wantErr:      true,
			wantRegister: 1,
			wantLogin:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.api, credstore.NewMemoryStore(credstore.Credentials{}))
			err := s.Register(context.Background(), tt.input())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, StateError, s.Snapshot().State)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRegister, tt.api.registerCalls.Load())
			assert.Equal(t, tt.wantLogin, tt.api.loginCalls.Load())
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
		})
	}
}

func TestValidateRegistration_MarksInvalidRequest(t *testing.T) {
	err := ValidateRegistration(client.RegisterInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrInvalidRequest)
	assert.Equal(t, "username, email, password required", err.Error())
}

func TestFetchUser_NoTokenSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, credstore.NewMemoryStore(credstore.Credentials{}))

	err := s.FetchUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), api.meCalls.Load())
	assert.Equal(t, StateAnonymous, s.Snapshot().State)
}

func TestFetchUser_FailureClearsFlag(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{Access: "a", Refresh: "r", IsAuthenticated: true})
	s := New(&fakeAPI{meErr: errBackend}, creds)

	require.Error(t, s.FetchUser(context.Background()))

	snap := s.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Profile)
	assert.ErrorIs(t, snap.Err, errBackend)

	stored, _ := creds.Load()
	assert.False(t, stored.IsAuthenticated)
}

func TestBoot(t *testing.T) {
	tests := []struct {
		name      string
		stored    credstore.Credentials
		api       *fakeAPI
		wantState State
		wantAuth  bool
		wantCalls int32
	}{
		{"nothing stored", credstore.Credentials{}, &fakeAPI{}, StateAnonymous, false, 0},
		{"flag without token", credstore.Credentials{IsAuthenticated: true}, &fakeAPI{}, StateAnonymous, false, 0},
		{"token without flag", credstore.Credentials{Access: "a"}, &fakeAPI{}, StateAnonymous, false, 0},
		{"restored", credstore.Credentials{Access: "a", Refresh: "r", IsAuthenticated: true}, &fakeAPI{}, StateAuthenticated, true, 1},
		{"rejected", credstore.Credentials{Access: "a", Refresh: "r", IsAuthenticated: true}, &fakeAPI{meErr: errBackend}, StateAnonymous, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.api, credstore.NewMemoryStore(tt.stored))
			s.Boot(context.Background())

			snap := s.Snapshot()
			assert.Equal(t, tt.wantState, snap.State)
			assert.Equal(t, tt.wantAuth, snap.IsAuthenticated)
			assert.False(t, snap.Restoring)
			assert.Equal(t, tt.wantCalls, tt.api.meCalls.Load())
			if snap.IsAuthenticated {
				assert.NotNil(t, snap.User)
			}
		})
	}
}

// blockingAPI holds Me until released so the restoring phase is observable
type blockingAPI struct {
	fakeAPI
	release chan struct{}
	entered chan struct{}
}

func (b *blockingAPI) Me(ctx context.Context) (*client.User, error) {
	close(b.entered)
	<-b.release
	return b.fakeAPI.Me(ctx)
}

func TestBoot_RestoringIsNeverAuthenticated(t *testing.T) {
	api := &blockingAPI{release: make(chan struct{}), entered: make(chan struct{})}
	s := New(api, credstore.NewMemoryStore(credstore.Credentials{Access: "a", Refresh: "r", IsAuthenticated: true}))

	done := make(chan error)
	go func() { done <- s.Boot(context.Background()) }()

	<-api.entered
	snap := s.Snapshot()
	assert.True(t, snap.Restoring)
	assert.Equal(t, StateAuthenticating, snap.State)
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)

	close(api.release)
	require.NoError(t, <-done)
	assert.True(t, s.IsAuthenticated())
}

func TestLogout_ThenBootIsAnonymous(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{}, creds)
	require.NoError(t, s.Login(context.Background(), "ada", "pw"))

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	stored, _ := creds.Load()
	assert.Equal(t, credstore.Credentials{}, stored)

	fresh := New(&fakeAPI{}, creds)
	require.NoError(t, fresh.Boot(context.Background()))
	assert.Equal(t, StateAnonymous, fresh.Snapshot().State)
}

func TestExpire_RecordsMessage(t *testing.T) {
	creds := credstore.NewMemoryStore(credstore.Credentials{})
	s := New(&fakeAPI{}, creds)
	require.NoError(t, s.Login(context.Background(), "ada", "pw"))

	s.Expire()

	snap := s.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.ErrorIs(t, snap.Err, ErrExpired)
	assert.Nil(t, snap.User)
}

func TestUpdateProfile(t *testing.T) {
	s := New(&fakeAPI{}, credstore.NewMemoryStore(credstore.Credentials{}))
	bio := "distributed systems"

	assert.ErrorIs(t, s.UpdateProfile(context.Background(), client.ProfileUpdate{Bio: &bio}), ErrNotAuthenticated)

	require.NoError(t, s.Login(context.Background(), "ada", "pw"))
	require.NoError(t, s.UpdateProfile(context.Background(), client.ProfileUpdate{Bio: &bio}))
	assert.Equal(t, bio, s.Snapshot().Profile.Bio)
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	s := New(&fakeAPI{}, credstore.NewMemoryStore(credstore.Credentials{}))
	require.NoError(t, s.Login(context.Background(), "ada", "pw"))

	snap := s.Snapshot()
	snap.User.Username = "mallory"
	assert.Equal(t, "ada", s.Snapshot().User.Username)
}
