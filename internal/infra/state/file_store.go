// internal/infra/state/file_store.go
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"
	"draw_notification_bot/internal/infra/fileutil"
)

// ErrCorruptState is returned when the state file exists but cannot be understood.
var ErrCorruptState = notification.ErrCorruptState

// fileRecord is the on-disk format: {"last_draw_date": "2025-06-01"}.
type fileRecord struct {
	LastDrawDate string `json:"last_draw_date"`
}

// FileStore keeps the notification marker in a small JSON file.
type FileStore struct {
	path string
}

var _ notification.StateStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Read(_ context.Context) (*notification.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}
	if strings.TrimSpace(rec.LastDrawDate) == "" {
		return nil, fmt.Errorf("%w: %s: last_draw_date is empty", ErrCorruptState, s.path)
	}
	date, err := draw.ParseDate(rec.LastDrawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, s.path, err)
	}
	return &notification.State{LastNotifiedDate: date}, nil
}

func (s *FileStore) Write(_ context.Context, st notification.State) error {
	data, err := json.Marshal(fileRecord{LastDrawDate: st.LastNotifiedDate.Format(draw.DateLayout)})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
