// internal/infra/source/csv_file.go
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"draw_notification_bot/internal/domain/draw"
)

// CSVFileSource reads the exported draw table, whose header row carries the
// column titles ("Draw #", "Draw Date", "Category", "ITAs Issued", "CRS Score", ...).
type CSVFileSource struct {
	path string
}

var _ draw.Source = (*CSVFileSource)(nil)

func NewCSVFileSource(path string) *CSVFileSource {
	return &CSVFileSource{path: path}
}

func (s *CSVFileSource) Name() string {
	return "fallback-csv"
}

func (s *CSVFileSource) FetchEntries(_ context.Context) ([]draw.RawEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Ragged rows are tolerated; missing cells become missing fields
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s is empty", s.path)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", s.path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var entries []draw.RawEntry
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}

		entry := make(draw.RawEntry, len(header))
		for i, name := range header {
			if i < len(row) && name != "" {
				entry[name] = row[i]
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
