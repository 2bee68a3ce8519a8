package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/XZXY-AI/reddit-crawler/internal/models"
)

// BlobStore persists a document under a slash-separated key and returns
// where it was written.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Clock abstracts time retrieval so file names are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual local time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Writer serializes search results into date-partitioned JSON snapshots.
//
// Two writes for the same query within the same second map to the same key;
// the second one overwrites the first.
type Writer struct {
	store BlobStore
	clock Clock
}

// NewWriter creates a Writer. A nil clock uses the real local time.
func NewWriter(store BlobStore, clock Clock) *Writer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Writer{store: store, clock: clock}
}

// Write stores records and returns the location of the snapshot
func (w *Writer) Write(ctx context.Context, records []models.PostRecord, req models.SearchRequest) (string, error) {
	data, err := Encode(records)
	if err != nil {
		return "", err
	}

	location, err := w.store.Put(ctx, Key(w.clock.Now(), req), data)
	if err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return location, nil
}

// Key returns <YYYYMMDD>/<mode>/<query>_<timeFilter>_<sort>_<HHMMSS>.json for
// keyword searches and <YYYYMMDD>/<mode>/<query>_<HHMMSS>.json otherwise.
func Key(now time.Time, req models.SearchRequest) string {
	req = req.Normalize()
	query := sanitize(req.Query)
	stamp := now.Format("150405")

	var name string
	if req.Mode == models.ModeKeyword {
		name = fmt.Sprintf("%s_%s_%s_%s.json", query, sanitize(req.TimeFilter), sanitize(req.Sort), stamp)
	} else {
		name = fmt.Sprintf("%s_%s.json", query, stamp)
	}

	return path.Join(now.Format("20060102"), sanitize(string(req.Mode)), name)
}

// Encode renders records as 2-space indented UTF-8 JSON without escaping
// non-ASCII text or HTML characters.
func Encode(records []models.PostRecord) ([]byte, error) {
	if records == nil {
		records = []models.PostRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

var pathReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// sanitize keeps a user-supplied value from escaping its directory
func sanitize(s string) string {
	s = pathReplacer.Replace(strings.TrimSpace(s))
	if s == "" || strings.Trim(s, ".") == "" {
		return strings.Repeat("_", max(len(s), 1))
	}
	return s
}
