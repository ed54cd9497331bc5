// Package settings keeps the editor's language choice and the judge API key
// in a YAML file. The API key is sealed before it is written.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gsarma/judgerun/internal/code"
	"github.com/gsarma/judgerun/internal/crypto"
)

const DefaultLanguage = "cpp"

// ErrUnknownLanguage is returned by Update for languages with no judge id.
var ErrUnknownLanguage = errors.New("settings: unknown language")

// Settings is the user-facing configuration.
type Settings struct {
	Language string `json:"language"`
	APIKey   string `json:"api_key"`
}

// Masked returns a copy safe to show back to a client.
func (s Settings) Masked() Settings {
	if len(s.APIKey) > 4 {
		s.APIKey = "****" + s.APIKey[len(s.APIKey)-4:]
	} else if s.APIKey != "" {
		s.APIKey = "****"
	}
	return s
}

type fileFormat struct {
	Language     string `yaml:"language"`
	APIKeySealed string `yaml:"apiKeySealed,omitempty"`
}

// Store persists Settings at path.
type Store struct {
	mu     sync.RWMutex
	path   string
	sealer *crypto.Sealer
	cur    Settings
}

// Open loads the settings file at path. A missing file yields defaults.
func Open(path string, sealer *crypto.Sealer) (*Store, error) {
	s := &Store{path: path, sealer: sealer, cur: Settings{Language: DefaultLanguage}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file failed: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse settings file failed: %w", err)
	}
	key, err := sealer.Open(f.APIKeySealed)
	if err != nil {
		return nil, fmt.Errorf("unseal api key: %w", err)
	}
	s.cur = Settings{Language: f.Language, APIKey: key}
	applyDefaults(&s.cur)
	return s, nil
}

func applyDefaults(s *Settings) {
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update validates next, writes it to disk and makes it current. An empty
// APIKey keeps the stored key.
func (s *Store) Update(next Settings) (Settings, error) {
	applyDefaults(&next)
	if code.LanguageID(next.Language) == 0 {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, next.Language)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if next.APIKey == "" {
		next.APIKey = s.cur.APIKey
	}
	if err := s.write(next); err != nil {
		return Settings{}, err
	}
	s.cur = next
	return next, nil
}

func (s *Store) write(next Settings) error {
	sealed, err := s.sealer.Seal(next.APIKey)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(fileFormat{Language: next.Language, APIKeySealed: sealed})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings file failed: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write settings file failed: %w", err)
	}
	return nil
}
