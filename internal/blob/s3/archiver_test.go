package s3blob

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arblab/polykalshi/internal/domain"
)

type upload struct {
	key         string
	contentType string
	body        []byte
	multipart   bool
}

type memUploader struct {
	uploads []upload
}

func (m *memUploader) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.uploads = append(m.uploads, upload{key: key, contentType: contentType, body: data})
	return nil
}

func (m *memUploader) PutMultipart(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.uploads = append(m.uploads, upload{key: key, contentType: contentType, body: data, multipart: true})
	return nil
}

func passTime(t *testing.T) time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, "2026-08-28T14:15:00Z")
	require.NoError(t, err)
	return at
}

func TestArchiveOpportunities(t *testing.T) {
	store := &memUploader{}
	a := &PassArchiver{store: store}

	opps := []domain.ArbOpportunity{
		{ID: "one", EventKey: "a <-> b", EdgeBps: 1300},
		{ID: "two", EventKey: "c <-> d", EdgeBps: 900},
	}

	path, err := a.ArchiveOpportunities(context.Background(), passTime(t), opps)
	require.NoError(t, err)
	assert.Equal(t, "scans/opportunities/2026/08/28/pass-20260828T141500Z.jsonl", path)

	require.Len(t, store.uploads, 1)
	up := store.uploads[0]
	assert.Equal(t, path, up.key)
	assert.Equal(t, "application/x-ndjson", up.contentType)
	assert.False(t, up.multipart)

	// One JSON document per line, round-trippable.
	var lines int
	sc := bufio.NewScanner(bytes.NewReader(up.body))
	for sc.Scan() {
		var opp domain.ArbOpportunity
		require.NoError(t, json.Unmarshal(sc.Bytes(), &opp))
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestArchiveOpportunitiesEmptyPassSkipped(t *testing.T) {
	store := &memUploader{}
	a := &PassArchiver{store: store}

	path, err := a.ArchiveOpportunities(context.Background(), passTime(t), nil)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, store.uploads)
}

func TestArchiveSnapshotUsesMultipart(t *testing.T) {
	store := &memUploader{}
	a := &PassArchiver{store: store}

	quotes := []domain.Quote{
		{Venue: domain.VenueKalshi, MarketID: "m1", Outcome: domain.OutcomeYes, Price: 0.42, Size: 900},
	}

	path, err := a.ArchiveSnapshot(context.Background(), passTime(t), domain.VenueKalshi, quotes)
	require.NoError(t, err)
	assert.Equal(t, "scans/snapshots/kalshi/2026/08/28/pass-20260828T141500Z.jsonl", path)

	require.Len(t, store.uploads, 1)
	assert.True(t, store.uploads[0].multipart)
	assert.Equal(t, "application/x-ndjson", store.uploads[0].contentType)
}

func TestWithScheme(t *testing.T) {
	assert.Equal(t, "https://e2.example.com", withScheme("e2.example.com", true))
	assert.Equal(t, "http://minio:9000", withScheme("minio:9000", false))
	assert.Equal(t, "http://already.example.com", withScheme("http://already.example.com", true))
}
