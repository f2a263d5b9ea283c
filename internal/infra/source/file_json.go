// internal/infra/source/file_json.go
package source

import (
	"context"
	"fmt"
	"os"

	"draw_notification_bot/internal/domain/draw"
)

// FileJSONSource reads a local copy of the rounds feed.
type FileJSONSource struct {
	path string
}

var _ draw.Source = (*FileJSONSource)(nil)

func NewFileJSONSource(path string) *FileJSONSource {
	return &FileJSONSource{path: path}
}

func (s *FileJSONSource) Name() string {
	return "fallback-json"
}

func (s *FileJSONSource) FetchEntries(_ context.Context) ([]draw.RawEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	entries, err := decodeFeed(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return entries, nil
}
