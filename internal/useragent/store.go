package useragent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrNotFound — для сессии ещё нет User-Agent.
var ErrNotFound = errors.New("user agent not found")

// Store — хранилище User-Agent по имени сессии.
type Store interface {
	Get(ctx context.Context, session string) (string, error)
	Save(ctx context.Context, session, userAgent string) error
}

// Resolve возвращает сохранённый User-Agent или создаёт и сохраняет новый.
func Resolve(ctx context.Context, store Store, session string, logger *slog.Logger) (string, error) {
	ua, err := store.Get(ctx, session)
	if err == nil && ua != "" {
		return ua, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("get user agent: %w", err)
	}

	ua = Generate()
	if err := store.Save(ctx, session, ua); err != nil {
		return "", fmt.Errorf("save user agent: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("user agent created", "account", session)
	return ua, nil
}

// fileEntry — запись в JSON-файле.
type fileEntry struct {
	SessionName string `json:"session_name"`
	UserAgent   string `json:"user_agent"`
}

// FileStore хранит User-Agent в JSON-файле.
// Безопасен для конкурентного использования внутри процесса.
//
// Повреждённый файл не мешает запуску: хранилище начинается с пустого
// списка, и следующий Save перезаписывает файл.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	entries []fileEntry
}

// NewFileStore создаёт FileStore. Файл читается при первом обращении.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Get возвращает User-Agent сессии.
func (s *FileStore) Get(_ context.Context, session string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", err
	}

	for _, e := range s.entries {
		if e.SessionName == session {
			return e.UserAgent, nil
		}
	}
	return "", ErrNotFound
}

// Save сохраняет User-Agent и перезаписывает файл целиком.
func (s *FileStore) Save(_ context.Context, session, userAgent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	replaced := false
	for i := range s.entries {
		if s.entries[i].SessionName == session {
			s.entries[i].UserAgent = userAgent
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries = append(s.entries, fileEntry{SessionName: session, UserAgent: userAgent})
	}

	data, err := json.MarshalIndent(s.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal user agents: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write user agents: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace user agents: %w", err)
	}
	return nil
}

// load читает файл один раз. Отсутствующий файл — пустое хранилище.
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.entries = nil
	case err != nil:
		return fmt.Errorf("read user agents: %w", err)
	case len(data) == 0:
		s.entries = nil
	default:
		if err := json.Unmarshal(data, &s.entries); err != nil {
			s.logger.Warn("user agents file is corrupt, starting with empty list",
				"path", s.path, "error", err)
			s.entries = nil
		}
	}

	s.loaded = true
	return nil
}
