package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/ports"
)

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// runStoreSuite checks the behavior every ports.Storage backend shares
func runStoreSuite(t *testing.T, newStore func(t *testing.T) ports.Storage) {
	t.Run("PasswordHashes", func(t *testing.T) { testPasswordHashes(t, newStore(t)) })
	t.Run("DomHashes", func(t *testing.T) { testDomHashes(t, newStore(t)) })
	t.Run("Usernames", func(t *testing.T) { testUsernames(t, newStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("ConcurrentWrites", func(t *testing.T) { testConcurrentWrites(t, newStore(t)) })
}

func testPasswordHashes(t *testing.T, store ports.Storage) {
	ctx := context.Background()

	got, err := store.GetPasswordHash(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	first := &domain.PasswordHashRecord{Hash: "aa11", Hostname: "portal.enterprise.example", Username: "alice", CreatedAt: baseTime}
	require.NoError(t, store.SavePasswordHash(ctx, first))

	got, err = store.GetPasswordHash(ctx, "aa11")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ContentHash("aa11"), got.Hash)
	assert.Equal(t, "portal.enterprise.example", got.Hostname)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, baseTime.Equal(got.CreatedAt))

	// Newer save for the same digest overwrites
	newer := &domain.PasswordHashRecord{Hash: "aa11", Hostname: "mail.enterprise.example", Username: "alice.b", CreatedAt: baseTime.Add(time.Hour)}
	require.NoError(t, store.SavePasswordHash(ctx, newer))

	got, err = store.GetPasswordHash(ctx, "aa11")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mail.enterprise.example", got.Hostname)
	assert.Equal(t, "alice.b", got.Username)

	require.NoError(t, store.DeletePasswordHash(ctx, "aa11"))
	got, err = store.GetPasswordHash(ctx, "aa11")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting twice is fine
	assert.NoError(t, store.DeletePasswordHash(ctx, "aa11"))
}

func testDomHashes(t *testing.T, store ports.Storage) {
	ctx := context.Background()

	records, err := store.FindDomHashes(ctx, "ff00")
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.SaveDomHash(ctx, &domain.DomHashRecord{Hash: "ff00", Domain: "enterprise.example", CreatedAt: baseTime}))
	require.NoError(t, store.SaveDomHash(ctx, &domain.DomHashRecord{Hash: "ff00", Domain: "corp.example", CreatedAt: baseTime}))
	require.NoError(t, store.SaveDomHash(ctx, &domain.DomHashRecord{Hash: "ff00", Domain: "enterprise.example", CreatedAt: baseTime.Add(time.Minute)}))
	require.NoError(t, store.SaveDomHash(ctx, &domain.DomHashRecord{Hash: "ee11", Domain: "enterprise.example", CreatedAt: baseTime}))

	records, err = store.FindDomHashes(ctx, "ff00")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "corp.example", records[0].Domain)
	assert.Equal(t, "enterprise.example", records[1].Domain)
	assert.True(t, baseTime.Add(time.Minute).Equal(records[1].CreatedAt))
	for _, record := range records {
		assert.Equal(t, domain.ContentHash("ff00"), record.Hash)
	}
}

func testUsernames(t *testing.T, store ports.Storage) {
	ctx := context.Background()

	record := &domain.UsernameRecord{Username: "alice", Hostname: "portal.enterprise.example", CreatedAt: baseTime}
	require.NoError(t, store.SaveUsername(ctx, record))
	// Saving the same pair again is an upsert
	record.CreatedAt = baseTime.Add(time.Minute)
	assert.NoError(t, store.SaveUsername(ctx, record))
}

func testNotifications(t *testing.T, store ports.Storage) {
	ctx := context.Background()

	got, err := store.GetNotification(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, store.DeleteNotification(ctx, "missing"), domain.ErrNotFound)

	for i, id := range []string{"n-old", "n-mid", "n-new"} {
		require.NoError(t, store.PutNotification(ctx, &domain.NotificationRecord{
			ID:        id,
			Hash:      "aa11",
			URL:       fmt.Sprintf("https://phish%d.example/login", i),
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err = store.GetNotification(ctx, "n-mid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ContentHash("aa11"), got.Hash)
	assert.Equal(t, "https://phish1.example/login", got.URL)

	list, err := store.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n-old", list[0].ID)
	assert.Equal(t, "n-new", list[2].ID)

	require.NoError(t, store.DeleteNotification(ctx, "n-mid"))
	got, err = store.GetNotification(ctx, "n-mid")
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := store.DeleteNotificationsBefore(ctx, baseTime.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "n-old", removed[0].ID)

	list, err = store.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n-new", list[0].ID)

	removed, err = store.DeleteNotificationsBefore(ctx, baseTime)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func testConcurrentWrites(t *testing.T, store ports.Storage) {
	ctx := context.Background()

	var wg conc.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Go(func() {
			hash := domain.ContentHash(fmt.Sprintf("hash-%02d", i))
			assert.NoError(t, store.SavePasswordHash(ctx, &domain.PasswordHashRecord{Hash: hash, Hostname: "enterprise.example", CreatedAt: baseTime}))
			assert.NoError(t, store.SaveDomHash(ctx, &domain.DomHashRecord{Hash: "shared", Domain: fmt.Sprintf("d%02d.example", i), CreatedAt: baseTime}))
		})
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		got, err := store.GetPasswordHash(ctx, domain.ContentHash(fmt.Sprintf("hash-%02d", i)))
		require.NoError(t, err)
		assert.NotNil(t, got)
	}

	records, err := store.FindDomHashes(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
