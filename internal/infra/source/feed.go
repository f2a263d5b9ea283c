// internal/infra/source/feed.go
package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"draw_notification_bot/internal/domain/draw"
)

// feedDocument is the IRCC rounds feed: {"rounds": [ {...}, ... ]}.
type feedDocument struct {
	Rounds []draw.RawEntry `json:"rounds"`
}

// decodeFeed accepts either the rounds document or a bare array of entries.
// Numbers are kept as json.Number so large counts survive untouched.
func decodeFeed(data []byte) ([]draw.RawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty feed")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '[' {
		var entries []draw.RawEntry
		if err := dec.Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode feed array: %w", err)
		}
		return entries, nil
	}

	var doc feedDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed document: %w", err)
	}
	if doc.Rounds == nil {
		return nil, fmt.Errorf("feed has no \"rounds\" field")
	}
	return doc.Rounds, nil
}
