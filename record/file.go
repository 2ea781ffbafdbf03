package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofrs/flock"
)

var ErrEmptyPath = errors.New("record file path is empty")

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps every record in one JSON array file. Appends rewrite the
// whole file through a temp file and rename. The read-modify-write holds a
// mutex and an advisory lock on "<path>.lock", so stores in other processes
// sharing the path never lose each other's records.
type FileStore struct {
	mu     sync.Mutex
	path   string
	lock   *flock.Flock
	masker func(CandidateRecord) (CandidateRecord, error)
}

type FileStoreOption func(*FileStore)

// WithMasker replaces the masking applied before a record is written.
func WithMasker(masker func(CandidateRecord) (CandidateRecord, error)) FileStoreOption {
	return func(s *FileStore) {
		s.masker = masker
	}
}

func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	s := &FileStore{path: path, lock: flock.New(path + ".lock"), masker: Mask}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FileStore) Append(ctx context.Context, rec CandidateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	masked := rec
	if s.masker != nil {
		var err error
		masked, err = s.masker(rec)
		if err != nil {
			return fmt.Errorf("mask record: %w", err)
		}
	}

	return s.withLock(ctx, false, func() error {
		records, err := s.load()
		if err != nil {
			return err
		}
		records = append(records, masked)
		if err := s.write(records); err != nil {
			return err
		}
		slog.Debug("candidate record appended", "path", s.path, "session_id", rec.SessionID, "status", rec.Status, "total", len(records))
		return nil
	})
}

func (s *FileStore) List(ctx context.Context) ([]CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	var records []CandidateRecord
	err := s.withLock(ctx, true, func() error {
		var err error
		records, err = s.load()
		return err
	})
	return records, err
}

// withLock runs fn holding the mutex and the file lock, shared or exclusive.
func (s *FileStore) withLock(ctx context.Context, shared bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	var err error
	if shared {
		_, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		_, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("lock records %s: %w", s.lock.Path(), err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Warn("failed to unlock records", "path", s.lock.Path(), "err", err)
		}
	}()
	return fn()
}

func (s *FileStore) load() ([]CandidateRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []CandidateRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore) write(records []CandidateRecord) error {
	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace records file: %w", err)
	}
	return nil
}

var _ Sink = (*FileStore)(nil)
