// internal/domain/draw/source.go
package draw

import "context"

// Source supplies raw draw entries. Implementations live in infra/source.
type Source interface {
	// Name identifies the source in logs (e.g. "live-json", "fallback-file").
	Name() string
	// FetchEntries returns the raw entries, or an error if the source is unreachable or malformed.
	FetchEntries(ctx context.Context) ([]RawEntry, error)
}
