// internal/domain/draw/parse.go
package draw

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord marks a raw entry that could not be turned into a Record.
// Callers drop such entries and keep going.
var ErrMalformedRecord = errors.New("malformed draw record")

// DefaultCategory is used when an entry carries no category/name field.
const DefaultCategory = "N/A"

// Alternate key names, in lookup order. The live IRCC feed uses the camelCase
// names, the CSV export uses the spaced column titles.
var (
	drawNumberKeys = []string{"drawNumber", "Draw #", "draw_number"}
	drawDateKeys   = []string{"drawDateFull", "drawDate", "Draw Date", "date", "draw_date"}
	categoryKeys   = []string{"drawName", "category", "Category", "stream", "Stream"}
	itasKeys       = []string{"drawSize", "itasIssued", "ITAs Issued", "notices_issued"}
	crsKeys        = []string{"drawCRS", "crsScore", "CRS Score"}
)

var dateLayouts = []string{
	DateLayout,
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEntry converts one raw entry into a Record.
// A missing draw number or an unusable date makes the entry malformed;
// missing or unparseable counts default to 0.
func ParseEntry(raw RawEntry) (Record, error) {
	number, ok := firstInt(raw, drawNumberKeys)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing or invalid draw number", ErrMalformedRecord)
	}

	date, ok := firstDate(raw, drawDateKeys)
	if !ok {
		return Record{}, fmt.Errorf("%w: draw %d has no valid draw date", ErrMalformedRecord, number)
	}

	category := firstString(raw, categoryKeys)
	if category == "" {
		category = DefaultCategory
	}

	itas, _ := firstInt(raw, itasKeys)
	crs, _ := firstInt(raw, crsKeys)

	return Record{
		DrawNumber: number,
		DrawDate:   date,
		Category:   category,
		ITAsIssued: nonNegative(itas),
		CRSScore:   nonNegative(crs),
	}, nil
}

// ParseEntries parses every entry, returning the usable records and one error per dropped entry.
func ParseEntries(raws []RawEntry) ([]Record, []error) {
	records := make([]Record, 0, len(raws))
	var dropped []error
	for i, raw := range raws {
		rec, err := ParseEntry(raw)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

// Normalize deduplicates records by draw number, keeping the one with the
// latest draw date (the later entry wins a tie), and sorts the result newest first.
func Normalize(records []Record) []Record {
	byNumber := make(map[int]int, len(records)) // draw number -> index in out
	out := make([]Record, 0, len(records))

	for _, rec := range records {
		idx, seen := byNumber[rec.DrawNumber]
		if !seen {
			byNumber[rec.DrawNumber] = len(out)
			out = append(out, rec)
			continue
		}
		if !rec.DrawDate.Before(out[idx].DrawDate) {
			out[idx] = rec
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DrawDate.Equal(out[j].DrawDate) {
			return out[i].DrawDate.After(out[j].DrawDate)
		}
		return out[i].DrawNumber > out[j].DrawNumber
	})
	return out
}

// ParseDate parses a calendar date in any of the layouts observed in draw sources.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func firstString(raw RawEntry, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(raw RawEntry, keys []string) (int, bool) {
	for _, k := range keys {
		if n, ok := toInt(raw[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func firstDate(raw RawEntry, keys []string) (time.Time, bool) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if t, err := ParseDate(v); err == nil {
				return t, true
			}
		case time.Time:
			if !v.IsZero() {
				return DateOf(v), true
			}
		}
	}
	return time.Time{}, false
}

// toInt accepts JSON numbers and strings such as "3,000" or "351 (Canadian Experience Class)".
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		return toInt(n.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return 0, false
		}
		if i, err := strconv.Atoi(fields[0]); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return toInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
