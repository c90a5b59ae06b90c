package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arblab/polykalshi/internal/domain"
)

// jsonlContentType labels pass artifacts as newline-delimited JSON.
const jsonlContentType = "application/x-ndjson"

// uploader is the slice of Client the archiver needs.
type uploader interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PutMultipart(ctx context.Context, key string, body io.Reader, contentType string) error
}

// PassArchiver uploads the artifacts of one scan pass to object storage:
// detected opportunities as JSONL and, optionally, the raw quote snapshots
// that produced them. Archives make a pass reproducible after the venues'
// books have moved on.
type PassArchiver struct {
	store uploader
}

// NewPassArchiver creates a PassArchiver uploading through the given client.
func NewPassArchiver(c *Client) *PassArchiver {
	return &PassArchiver{store: c}
}

// ArchiveOpportunities uploads the pass's opportunities as JSONL under a
// date-partitioned key. Empty passes are skipped; the returned path is empty
// in that case.
func (a *PassArchiver) ArchiveOpportunities(ctx context.Context, passAt time.Time, opps []domain.ArbOpportunity) (string, error) {
	if len(opps) == 0 {
		return "", nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive opportunities marshal: %w", err)
	}

	path := passPath("opportunities", passAt)
	if err := a.store.Put(ctx, path, bytes.NewReader(buf), jsonlContentType); err != nil {
		return "", fmt.Errorf("s3blob: archive opportunities upload: %w", err)
	}
	return path, nil
}

// ArchiveSnapshot uploads one venue's raw quote snapshot. Snapshots run to
// thousands of quotes with depth, so the multipart path is used.
func (a *PassArchiver) ArchiveSnapshot(ctx context.Context, passAt time.Time, venue domain.Venue, quotes []domain.Quote) (string, error) {
	if len(quotes) == 0 {
		return "", nil
	}

	buf, err := marshalJSONL(quotes)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot marshal: %w", err)
	}

	path := passPath("snapshots/"+string(venue), passAt)
	if err := a.store.PutMultipart(ctx, path, bytes.NewReader(buf), jsonlContentType); err != nil {
		return "", fmt.Errorf("s3blob: archive snapshot upload: %w", err)
	}
	return path, nil
}

// passPath builds the S3 key for a pass artifact, partitioned by date:
//
//	scans/opportunities/2026/08/28/pass-20260828T141500Z.jsonl
//	scans/snapshots/kalshi/2026/08/28/pass-20260828T141500Z.jsonl
func passPath(kind string, passAt time.Time) string {
	t := passAt.UTC()
	return fmt.Sprintf("scans/%s/%s/pass-%s.jsonl",
		kind, t.Format("2006/01/02"), t.Format("20060102T150405Z"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
