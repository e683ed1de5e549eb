package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spportal/database"
	"spportal/domain/contracts"
	"spportal/domain/portal"
	"spportal/logging"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	cfg := database.Config{
		Path:            filepath.Join(t.TempDir(), "probe.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		BusyTimeoutMs:   1000,
		EnableWAL:       true,
	}
	db, err := database.New(cfg, logging.NewLogger(&logging.Config{Output: "discard"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProbeHistoryRepository_RecordAndRecent(t *testing.T) {
	// Arrange
	repo := NewProbeHistoryRepository(newTestDatabase(t))
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	records := []portal.ProbeRecord{
		portal.NewProbeRecord("a", "https://contoso.sharepoint.com", portal.Succeeded(), 120*time.Millisecond, base),
		portal.NewProbeRecord("b", "https://contoso.sharepoint.com", portal.Failed(-1, "portal is unavailable", nil), 3*time.Second, base.Add(time.Minute)),
		portal.NewProbeRecord("c", "https://contoso.sharepoint.com", portal.Succeeded(), 90*time.Millisecond, base.Add(2*time.Minute)),
	}

	// Act
	for _, r := range records {
		require.NoError(t, repo.Record(ctx, r))
	}
	recent, err := repo.Recent(ctx, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	failed := recent[1]
	assert.False(t, failed.Success)
	assert.Equal(t, -1, failed.ErrorCode)
	assert.Equal(t, "portal is unavailable", failed.ErrorMessage)
	assert.Equal(t, 3*time.Second, failed.Duration)
	assert.True(t, base.Add(time.Minute).Equal(failed.CheckedAt))
	assert.True(t, recent[0].Success)
}

func TestProbeHistoryRepository_OrdersSubSecondTimestamps(t *testing.T) {
	repo := NewProbeHistoryRepository(newTestDatabase(t))
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Record(ctx, portal.ProbeRecord{ID: "later", Endpoint: "e", CheckedAt: base.Add(500 * time.Millisecond)}))
	require.NoError(t, repo.Record(ctx, portal.ProbeRecord{ID: "earlier", Endpoint: "e", CheckedAt: base}))

	recent, err := repo.Recent(ctx, 10)

	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "later", recent[0].ID)
}

func TestProbeHistoryRepository_DuplicateID(t *testing.T) {
	repo := NewProbeHistoryRepository(newTestDatabase(t))
	ctx := context.Background()
	rec := portal.ProbeRecord{ID: "dup", Endpoint: "e", CheckedAt: time.Now()}

	require.NoError(t, repo.Record(ctx, rec))
	assert.Error(t, repo.Record(ctx, rec))
}

func TestProbeHistoryRepository_InvalidLimit(t *testing.T) {
	repo := NewProbeHistoryRepository(newTestDatabase(t))

	_, err := repo.Recent(context.Background(), 0)

	assert.ErrorIs(t, err, contracts.ErrInvalidLimit)
}

func TestProbeHistoryRepository_Empty(t *testing.T) {
	repo := NewProbeHistoryRepository(newTestDatabase(t))

	recent, err := repo.Recent(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestProbeHistoryRepository_Prune(t *testing.T) {
	repo := NewProbeHistoryRepository(newTestDatabase(t))
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "older", "fresh"} {
		offset := -time.Duration(i+1) * time.Hour
		if id == "fresh" {
			offset = time.Hour
		}
		require.NoError(t, repo.Record(ctx, portal.ProbeRecord{ID: id, Endpoint: "e", CheckedAt: base.Add(offset)}))
	}

	removed, err := repo.Prune(ctx, base)

	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh", recent[0].ID)
}
