package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store keeps the session of the current CLI user in a single JSON file so
// that successive invocations can reload it at a well defined point.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

type StoreOption func(*Store)

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load returns ErrNoSession when nothing was saved and ErrExpired (along
// with the stale session) when it has outlived its TTL.
func (s *Store) Load(ctx context.Context, now time.Time) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debug("no session found", zap.String("path", s.path))
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}

	if sess.Expired(now) {
		s.logger.Info("session expired",
			zap.String("user", sess.User),
			zap.Time("expires_at", sess.ExpiresAt),
		)
		return &sess, ErrExpired
	}

	s.logger.Debug("session loaded",
		zap.String("user", sess.User),
		zap.Time("expires_at", sess.ExpiresAt),
	)
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}

	if file, err := os.OpenFile(tempPath, os.O_RDWR, 0600); err == nil {
		file.Sync()
		file.Close()
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return err
	}

	s.logger.Info("session saved",
		zap.String("user", sess.User),
		zap.Time("expires_at", sess.ExpiresAt),
	)
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	s.logger.Info("session deleted", zap.String("path", s.path))
	return nil
}
