package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"turnero/internal/db"
	apperrors "turnero/internal/errors"
)

// FileStore keeps the document as indented JSON in a single file.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*db.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Save(ctx context.Context, doc *db.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *FileStore) Update(ctx context.Context, fn func(doc *db.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

// load reads the file. A missing file is replaced by a fresh default
// document. An unreadable or unparseable one is moved aside first, and if
// that fails the load fails rather than overwrite it.
func (s *FileStore) load() (*db.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("store file not found, creating new one", zap.String("path", s.path))
			return s.initialize()
		}
		backup := s.asideName("unreadable")
		if rerr := os.Rename(s.path, backup); rerr != nil {
			s.logger.Error("store file unreadable and could not be moved aside",
				zap.String("path", s.path), zap.Error(err), zap.NamedError("rename_error", rerr))
			return nil, apperrors.ErrIO("could not read store", err)
		}
		s.logger.Warn("store file unreadable, reinitializing",
			zap.String("path", s.path), zap.String("backup", backup), zap.Error(err))
		return s.initialize()
	}

	var doc db.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		backup := s.asideName("corrupt")
		if werr := os.WriteFile(backup, data, 0o600); werr != nil {
			return nil, apperrors.ErrIO("could not back up corrupt store", werr)
		}
		s.logger.Warn("store file corrupt, reinitializing",
			zap.String("path", s.path), zap.String("backup", backup), zap.Error(err))
		return s.initialize()
	}
	doc.Normalize()
	return &doc, nil
}

func (s *FileStore) asideName(reason string) string {
	return fmt.Sprintf("%s.%s-%d", s.path, reason, time.Now().Unix())
}

func (s *FileStore) initialize() (*db.Document, error) {
	doc := NewDocument()
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// save writes atomically via a temp file + rename in the same directory.
func (s *FileStore) save(doc *db.Document) error {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.ErrIO("could not encode store", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	tmp, err := os.CreateTemp(dir, ".appointments-*.tmp")
	if err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.ErrIO("could not write store", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.ErrIO("could not write store", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.ErrIO("could not write store", err)
	}
	return nil
}
