// ABOUTME: Recently used resume files for the TUI picker
// ABOUTME: Stores up to five resume paths in the config directory

package resume

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MaxRecent is the maximum number of recent resumes to keep
const MaxRecent = 5

// RecentFileName is the list file inside the config directory
const RecentFileName = "recent_resumes.json"

// Recent manages the list of recently uploaded resumes
type Recent struct {
	configDir string
	files     []string
}

type recentData struct {
	Files []string `json:"files"`
}

// NewRecent creates a recent-resume list rooted at configDir
func NewRecent(configDir string) *Recent {
	return &Recent{configDir: configDir}
}

func (r *Recent) configFile() string {
	return filepath.Join(r.configDir, RecentFileName)
}

// Load reads the list from disk, dropping files that no longer exist or
// no longer have a supported extension
func (r *Recent) Load() ([]string, error) {
	data, err := os.ReadFile(r.configFile())
	if os.IsNotExist(err) {
		r.files = []string{}
		return r.files, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		r.files = []string{}
		return r.files, nil
	}

	r.files = make([]string, 0, len(recent.Files))
	for _, path := range recent.Files {
		if _, err := ContentTypeFor(path); err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			r.files = append(r.files, path)
		}
	}
	return r.files, nil
}

// Save writes the list, trimmed to MaxRecent
func (r *Recent) Save(files []string) error {
	if err := os.MkdirAll(r.configDir, 0700); err != nil {
		return err
	}
	if len(files) > MaxRecent {
		files = files[:MaxRecent]
	}
	r.files = files

	data, err := json.MarshalIndent(recentData{Files: files}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.configFile(), data, 0600)
}

// Add moves path to the front of the list
func (r *Recent) Add(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if r.files == nil {
		if _, err := r.Load(); err != nil {
			r.files = []string{}
		}
	}

	files := make([]string, 0, len(r.files)+1)
	files = append(files, path)
	for _, f := range r.files {
		if f != path {
			files = append(files, f)
		}
	}
	return r.Save(files)
}

// List returns the current list
func (r *Recent) List() []string {
	if r.files == nil {
		r.Load()
	}
	return r.files
}
