// internal/domain/draw/record.go
package draw

import "time"

// DateLayout is the canonical calendar-date layout used for logs, storage and messages.
const DateLayout = "2006-01-02"

// Record represents a single Express Entry draw (one invitation round).
type Record struct {
	DrawNumber int       // Not unique across sources, see Normalize
	DrawDate   time.Time // Calendar date, midnight UTC
	Category   string    // Program / round name, e.g. "Canadian Experience Class"
	ITAsIssued int       // Invitations to apply issued in the round
	CRSScore   int       // Cutoff Comprehensive Ranking System score
}

// DateString returns the draw date in DateLayout form.
func (r Record) DateString() string {
	return r.DrawDate.Format(DateLayout)
}

// RawEntry is one loosely typed draw entry as delivered by a data source.
// Key names vary between sources (live JSON feed, CSV export), see parse.go.
type RawEntry map[string]any
