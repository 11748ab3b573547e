// ABOUTME: Durable storage for bearer credentials and the authenticated flag
// ABOUTME: Stores session.json under a fixed namespace in the XDG config directory

package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// Namespace is the fixed key the credentials are stored under.
const Namespace = "nextstep-auth"

// FileName is the credentials file inside the config directory.
const FileName = "session.json"

// Credentials is everything that survives a restart. User and profile are
// always refetched from the server.
type Credentials struct {
	Access          string `json:"access,omitempty"`
	Refresh         string `json:"refresh,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// HasAccess reports whether an access credential is stored
func (c Credentials) HasAccess() bool {
	return c.Access != ""
}

// Store persists credentials. Implementations are safe for concurrent use:
// the session store and the HTTP gateway both read and write it.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	// SetTokens replaces both tokens; an empty refresh keeps the stored one.
	SetTokens(access, refresh string) error
	SetAuthenticated(bool) error
	Clear() error
}

// FileStore keeps credentials in a JSON file
type FileStore struct {
	configDir string
	mu        sync.Mutex
}

type fileData map[string]Credentials

// NewFileStore creates a store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// path returns the path to the credentials JSON
func (fs *FileStore) path() string {
	return filepath.Join(fs.configDir, FileName)
}

// Load reads credentials from disk. A missing or unreadable file yields
// empty credentials.
func (fs *FileStore) Load() (Credentials, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

func (fs *FileStore) load() (Credentials, error) {
	data, err := os.ReadFile(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "failed to read %s", fs.path())
	}

	var stored fileData
	if err := json.Unmarshal(data, &stored); err != nil {
		// Invalid JSON, start fresh
		return Credentials{}, nil
	}
	return stored[Namespace], nil
}

// Save writes credentials to disk
func (fs *FileStore) Save(c Credentials) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.save(c)
}

func (fs *FileStore) save(c Credentials) error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := json.MarshalIndent(fileData{Namespace: c}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode credentials")
	}

	tmp, err := os.CreateTemp(fs.configDir, FileName+".*")
	if err != nil {
		return errors.Wrap(err, "failed to write credentials")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write credentials")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write credentials")
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to restrict credentials file")
	}
	if err := os.Rename(tmp.Name(), fs.path()); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to replace credentials file")
	}
	return nil
}

// SetTokens updates the tokens and keeps the authenticated flag
func (fs *FileStore) SetTokens(access, refresh string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	c, err := fs.load()
	if err != nil {
		return err
	}
	c.Access = access
	if refresh != "" {
		c.Refresh = refresh
	}
	return fs.save(c)
}

// SetAuthenticated updates only the persisted flag
func (fs *FileStore) SetAuthenticated(v bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	c, err := fs.load()
	if err != nil {
		return err
	}
	c.IsAuthenticated = v
	return fs.save(c)
}

// Clear removes the credentials file
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.path())
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrap(err, "failed to remove credentials")
}

// MemoryStore keeps credentials for the lifetime of the process only
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore creates a store seeded with c
func NewMemoryStore(c Credentials) *MemoryStore {
	return &MemoryStore{creds: c}
}

func (ms *MemoryStore) Load() (Credentials, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.creds, nil
}

func (ms *MemoryStore) Save(c Credentials) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = c
	return nil
}

func (ms *MemoryStore) SetTokens(access, refresh string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds.Access = access
	if refresh != "" {
		ms.creds.Refresh = refresh
	}
	return nil
}

func (ms *MemoryStore) SetAuthenticated(v bool) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds.IsAuthenticated = v
	return nil
}

func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = Credentials{}
	return nil
}
