// internal/infra/source/http_json.go
package source

import (
	"context"
	"fmt"
	"time"

	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/infra/fileutil"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// HTTPJSONSource fetches the live rounds feed.
type HTTPJSONSource struct {
	client     *resty.Client
	url        string
	mirrorPath string // When set, a fetch with usable draws refreshes this file
	logger     *logrus.Entry
}

var _ draw.Source = (*HTTPJSONSource)(nil)

func NewHTTPJSONSource(url string, timeout time.Duration, mirrorPath string, logger *logrus.Entry) *HTTPJSONSource {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "draw-notification-bot/1.0")
	return &HTTPJSONSource{
		client:     client,
		url:        url,
		mirrorPath: mirrorPath,
		logger:     logger,
	}
}

func (s *HTTPJSONSource) Name() string {
	return "live-json"
}

func (s *HTTPJSONSource) FetchEntries(ctx context.Context) ([]draw.RawEntry, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s returned status %d", s.url, resp.StatusCode())
	}

	body := resp.Body()
	entries, err := decodeFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.url, err)
	}

	if s.mirrorPath != "" {
		s.mirror(body, entries)
	}
	return entries, nil
}

// mirror refreshes the fallback file, but only with a feed that yields at least
// one usable draw. An unusable live feed must not overwrite a good fallback.
func (s *HTTPJSONSource) mirror(body []byte, entries []draw.RawEntry) {
	records, _ := draw.ParseEntries(entries)
	if len(records) == 0 {
		s.logger.WithFields(logrus.Fields{
			"path":        s.mirrorPath,
			"raw_entries": len(entries),
		}).Warn("Live feed has no usable draws, keeping the existing fallback feed file")
		return
	}

	if err := fileutil.WriteFileAtomic(s.mirrorPath, body, 0o644); err != nil {
		s.logger.WithError(err).WithField("path", s.mirrorPath).Warn("Could not refresh fallback feed file")
		return
	}
	s.logger.WithField("path", s.mirrorPath).Debug("Fallback feed file refreshed")
}
