package documentstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAddAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, CollectionProcessors, Document{"name": "cdn", "status": "active"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, CollectionProcessors, id)
	require.NoError(t, err)
	assert.Equal(t, "cdn", doc["name"])
	assert.Equal(t, id, doc["id"])

	_, err = store.Get(ctx, CollectionProcessors, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now().UTC()
	for i, granted := range []bool{true, true, false} {
		_, err := store.Add(ctx, CollectionConsentLogs, Document{
			"user_id":   "u1",
			"granted":   granted,
			"timestamp": now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("equality", func(t *testing.T) {
		n, err := store.Count(ctx, CollectionConsentLogs, []Filter{Eq("granted", true)})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("time range", func(t *testing.T) {
		n, err := store.Count(ctx, CollectionConsentLogs, []Filter{
			Gte("timestamp", now.Add(30*time.Second)),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("in list", func(t *testing.T) {
		docs, err := store.Query(ctx, CollectionConsentLogs, QueryOptions{
			Filters: []Filter{In("user_id", "u1", "u2")},
		})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("missing field never matches", func(t *testing.T) {
		n, err := store.Count(ctx, CollectionConsentLogs, []Filter{Eq("absent", "x")})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestMemoryStoreOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Add(ctx, CollectionComplianceScores, Document{
			"overall_score": float64(60 + i),
			"calculated_at": base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, CollectionComplianceScores, QueryOptions{
		OrderBy: &Sort{Field: "calculated_at", Desc: true},
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 64.0, docs[0]["overall_score"])
	assert.Equal(t, 63.0, docs[1]["overall_score"])
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, CollectionActionItems, Document{"status": "open", "title": "fix"})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, CollectionActionItems, id, Document{"status": "closed"}))

	doc, err := store.Get(ctx, CollectionActionItems, id)
	require.NoError(t, err)
	assert.Equal(t, "closed", doc["status"])
	assert.Equal(t, "fix", doc["title"])

	assert.ErrorIs(t, store.Update(ctx, CollectionActionItems, "missing", Document{}), ErrNotFound)
}

func TestMemoryStoreFaultInjection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("gateway unavailable")

	store.FailCollection(CollectionProcessors, boom)

	_, err := store.Query(ctx, CollectionProcessors, QueryOptions{})
	assert.ErrorIs(t, err, boom)
	_, err = store.Count(ctx, CollectionProcessors, nil)
	assert.ErrorIs(t, err, boom)
	_, err = store.Add(ctx, CollectionProcessors, Document{})
	assert.ErrorIs(t, err, boom)

	store.FailCollection(CollectionProcessors, nil)
	_, err = store.Count(ctx, CollectionProcessors, nil)
	assert.NoError(t, err)
}

func TestMemoryStoreRFC3339StringTimestamps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.Add(ctx, CollectionAuditLogs, Document{
		"timestamp": base.Format(time.RFC3339Nano),
	})
	require.NoError(t, err)

	n, err := store.Count(ctx, CollectionAuditLogs, []Filter{
		Gte("timestamp", base.Add(-time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
